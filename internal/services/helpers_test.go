package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/storeops/faxbridge/internal/mail"
	"github.com/storeops/faxbridge/internal/models"
)

// fakeRecords is an in-memory Records with the same merge and transition
// semantics as the Firestore store.
type fakeRecords struct {
	mu     sync.Mutex
	jobs   map[string]models.FaxJob
	audit  []models.AuditLogEntry
	stores map[string]models.StoreRecord

	createErr error
	updateErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		jobs:   make(map[string]models.FaxJob),
		stores: make(map[string]models.StoreRecord),
	}
}

func (f *fakeRecords) CreatePending(ctx context.Context, job models.FaxJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.jobs[job.TrackingID]; ok {
		return fmt.Errorf("job %s already exists", job.TrackingID)
	}
	now := time.Now().UTC()
	job.Status = models.StatusPending
	job.CreatedAt = now
	job.UpdatedAt = now
	f.jobs[job.TrackingID] = job
	return nil
}

func (f *fakeRecords) ApplyUpdate(ctx context.Context, key string, upd models.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	current := f.jobs[key]
	next, ok := models.NextStatus(current.Status, upd.Status)
	if !ok {
		return nil
	}
	current.Status = next
	current.UpdatedAt = time.Now().UTC()
	if upd.TrackingID != "" {
		current.TrackingID = upd.TrackingID
	}
	if upd.FaxKey != "" {
		current.FaxKey = upd.FaxKey
	}
	if upd.RequesterEmail != "" {
		current.RequesterEmail = upd.RequesterEmail
	}
	f.jobs[key] = current
	return nil
}

func (f *fakeRecords) AppendAudit(ctx context.Context, entry models.AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audit = append(f.audit, entry)
	return nil
}

func (f *fakeRecords) GetStore(ctx context.Context, storeNumber string) (*models.StoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.stores[storeNumber]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeRecords) ListStores(ctx context.Context) ([]models.StoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StoreRecord
	for _, rec := range f.stores {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRecords) job(key string) (models.FaxJob, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[key]
	return j, ok
}

// fakeMailer captures sent messages; onSend, when set, runs before the
// message is recorded so tests can observe state at dispatch time.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []mail.Message
	err    error
	onSend func(msg mail.Message)
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onSend != nil {
		f.onSend(msg)
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeInbox is a canned Inbox for sweeper tests.
type fakeInbox struct {
	mu       sync.Mutex
	messages []mail.InboxMessage
	read     []uint32
	fetchErr error
	closed   bool
}

func (f *fakeInbox) FetchUnread(ctx context.Context, subjectFilter string) ([]mail.InboxMessage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.messages, nil
}

func (f *fakeInbox) MarkRead(ctx context.Context, uids []uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, uids...)
	return nil
}

func (f *fakeInbox) Close() error {
	f.closed = true
	return nil
}

// minimalPDFBase64 builds a structurally valid one-page PDF with a correct
// xref table, base64-encoded the way the web client submits payloads.
func minimalPDFBase64() string {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")

	objs := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>\nendobj\n",
		"4 0 obj\n<< /Length 0 >>\nstream\n\nendstream\nendobj\n",
	}
	offsets := make([]int, len(objs)+1)
	for i, o := range objs {
		offsets[i+1] = b.Len()
		b.WriteString(o)
	}

	xrefPos := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objs)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xrefPos)

	return base64.StdEncoding.EncodeToString(b.Bytes())
}

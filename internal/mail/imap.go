package mail

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/storeops/faxbridge/internal/config"
)

// IMAPInbox reads completion notices from the gateway's reply mailbox.
// One connection serves one sweep; callers must Close when the pass ends.
type IMAPInbox struct {
	conn    *client.Client
	mailbox string
}

// DialInbox connects and selects the configured mailbox. The dial honors the
// configured connect timeout so a wedged IMAP endpoint cannot stall a sweep
// past its schedule.
func DialInbox(cfg config.IMAPConfig) (*IMAPInbox, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("IMAP_ADDR must be set")
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := client.DialWithDialerTLS(dialer, cfg.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial IMAP server %s: %w", cfg.Addr, err)
	}

	if err := conn.Login(cfg.Username, cfg.Password); err != nil {
		_ = conn.Logout()
		return nil, fmt.Errorf("IMAP login failed for %s: %w", cfg.Username, err)
	}
	if _, err := conn.Select(cfg.Mailbox, false); err != nil {
		_ = conn.Logout()
		return nil, fmt.Errorf("failed to select mailbox %s: %w", cfg.Mailbox, err)
	}

	return &IMAPInbox{conn: conn, mailbox: cfg.Mailbox}, nil
}

// FetchUnread returns the unread messages whose subject contains
// subjectFilter. Fetches peek at the body so nothing is marked read as a side
// effect; consumption is explicit via MarkRead.
func (b *IMAPInbox) FetchUnread(ctx context.Context, subjectFilter string) ([]InboxMessage, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Header.Add("Subject", subjectFilter)

	uids, err := b.conn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, len(uids))
	if err := b.conn.UidFetch(seqset, items, ch); err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	var out []InboxMessage
	for msg := range ch {
		m := InboxMessage{UID: msg.Uid}
		if msg.Envelope != nil {
			m.Subject = msg.Envelope.Subject
		}
		if r := msg.GetBody(section); r != nil {
			body, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("failed to read body of message %d: %w", msg.Uid, err)
			}
			m.Body = string(body)
		}
		out = append(out, m)
	}
	return out, nil
}

// MarkRead flags the given messages as seen.
func (b *IMAPInbox) MarkRead(ctx context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := b.conn.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark %d message(s) read: %w", len(uids), err)
	}
	return nil
}

// Close logs out and drops the connection.
func (b *IMAPInbox) Close() error {
	return b.conn.Logout()
}

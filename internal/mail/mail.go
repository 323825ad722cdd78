// Package mail holds the two transports the fax bridge talks to the outside
// world with: an SMTP sender for dispatching gateway emails and an IMAP inbox
// for discovering completion notices.
package mail

import "context"

// Message is one outbound email to the fax gateway. The attachment is always
// declared as a PDF.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Sender dispatches a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// InboxMessage is one unread message discovered by a polling sweep.
type InboxMessage struct {
	UID     uint32
	Subject string
	Body    string
}

// Inbox yields unread messages matching a subject substring and can mark them
// read so they are never reprocessed.
type Inbox interface {
	FetchUnread(ctx context.Context, subjectFilter string) ([]InboxMessage, error)
	MarkRead(ctx context.Context, uids []uint32) error
	Close() error
}

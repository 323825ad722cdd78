package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a fax job.
type Status string

const (
	StatusPending Status = "Pending"
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// ParseStatus normalizes a status token from the webhook payload or a polled
// completion subject. The second return is false for anything outside the
// three known states.
func ParseStatus(s string) (Status, bool) {
	switch {
	case strings.EqualFold(s, string(StatusPending)):
		return StatusPending, true
	case strings.EqualFold(s, string(StatusSuccess)):
		return StatusSuccess, true
	case strings.EqualFold(s, string(StatusFailed)):
		return StatusFailed, true
	}
	return "", false
}

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// NextStatus decides whether a stored status may move to an incoming one.
// Pending accepts anything; a terminal value accepts only an identical replay.
// A stale Pending arriving after a terminal value is rejected so the two
// reconciliation channels cannot regress each other's writes.
func NextStatus(current, incoming Status) (Status, bool) {
	if current == "" || current == StatusPending {
		return incoming, true
	}
	if current == incoming {
		return current, true
	}
	return current, false
}

// FaxJob is the Firestore record for one send request, keyed by tracking ID.
// The gateway's own correlation key (faxKey) is learned later from the polling
// channel and, once set, is never cleared.
type FaxJob struct {
	TrackingID     string    `firestore:"trackingId,omitempty"`
	FaxKey         string    `firestore:"faxKey,omitempty"`
	Status         Status    `firestore:"status,omitempty"`
	RequesterEmail string    `firestore:"requesterEmail,omitempty"`
	StoreNumber    string    `firestore:"storeNumber,omitempty"`
	FaxNumber      string    `firestore:"faxNumber,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt      time.Time `firestore:"updatedAt,omitempty"`
}

// StatusUpdate is one reconciliation write from either channel. Empty fields
// are left untouched by the merge.
type StatusUpdate struct {
	TrackingID     string
	FaxKey         string
	Status         Status
	RequesterEmail string
}

// AuditLogEntry is an append-only record of one completed send attempt.
type AuditLogEntry struct {
	StoreNumber string    `firestore:"storeNumber"`
	Location    string    `firestore:"location,omitempty"`
	FaxNumber   string    `firestore:"faxNumber,omitempty"`
	FileName    string    `firestore:"fileName,omitempty"`
	Type        string    `firestore:"type,omitempty"`
	SentAt      time.Time `firestore:"sentAt"`
	Status      string    `firestore:"status,omitempty"`
}

// StoreRecord is a row of the store directory, keyed by store number.
// Seeded out of band; read-only here.
type StoreRecord struct {
	StoreNumber string `firestore:"storeNumber" json:"storeNumber"`
	Location    string `firestore:"location" json:"location"`
	FaxNumber   string `firestore:"faxNumber" json:"faxNumber"`
}

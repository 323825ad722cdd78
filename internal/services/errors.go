package services

import "fmt"

// The send and reconciliation flows classify failures so the HTTP layer can
// map them to status codes and the sweep can tell a bad message from a broken
// transport.

// ValidationError marks malformed or missing client input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a lookup against an unknown store number.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ConfigError marks a missing gateway address or credentials. The operator
// has to fix the deployment; callers see a server error.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// DispatchError wraps a mail transport failure. The pending job record is
// left in place for the reconciliation channels or manual follow-up.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return fmt.Sprintf("fax dispatch failed: %v", e.Err) }
func (e *DispatchError) Unwrap() error { return e.Err }

// ParseError marks an unrecognized completion message. The sweep logs it and
// consumes the message anyway.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

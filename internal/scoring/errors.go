package scoring

import (
	"errors"
	"fmt"
)

// Kind classifies failures so a single top-level handler per user action can
// report them. None of them are retried automatically.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindValidation       Kind = "validation"
	KindPrecondition     Kind = "precondition"
	KindTransport        Kind = "transport"
	KindMalformedPayload Kind = "malformed_payload"
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// TransportError covers network failures and non-success statuses from the
// extraction service. Message is the service-provided text when there is one.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("extraction service error (%d): %s", e.Status, e.Message)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error { return e.Err }

type MalformedPayloadError struct {
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string { return e.Reason }

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

var (
	ErrMissingCredential = &ConfigurationError{Reason: "extraction API key is not configured"}
	ErrEmptyRanking      = &PreconditionError{Reason: "no kingdom has a reading yet, upload at least one screenshot"}
)

// KindOf reports the taxonomy bucket of err, or "" for anything unclassified.
func KindOf(err error) Kind {
	var (
		cfgErr *ConfigurationError
		valErr *ValidationError
		preErr *PreconditionError
		tErr   *TransportError
		malErr *MalformedPayloadError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &preErr):
		return KindPrecondition
	case errors.As(err, &tErr):
		return KindTransport
	case errors.As(err, &malErr):
		return KindMalformedPayload
	}
	return ""
}

package ai

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey     = errors.New("gemini API key is required")
	ErrNoReadings        = errors.New("no sensor readings to analyze")
	ErrInvalidReading    = errors.New("invalid sensor reading")
	ErrEmptyRequirements = errors.New("requirements must not be empty")
	ErrInvalidOption     = errors.New("invalid solution option")
	ErrMissingFields     = errors.New("response is missing required fields")
)

// TransportError means the model could not be reached or refused the request.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generate content with %s: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the model answered but the text was not usable JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsTransport reports whether err came from the transport layer.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsParse reports whether err came from decoding the model's reply.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

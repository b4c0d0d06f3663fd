package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies domain errors for HTTP mapping at the request boundary.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation" // bad or missing input, client fault
	ErrorTypeTransform  ErrorType = "transform"  // corrupt image or PDF bytes, client fault
	ErrorTypeUpstream   ErrorType = "upstream"   // asset registration or portal transport failure
	ErrorTypeExtraction ErrorType = "extraction" // unparseable inference answer
	ErrorTypeTimeout    ErrorType = "timeout"    // inference deadline elapsed
	ErrorTypeConfig     ErrorType = "config"
)

// DomainError carries an error type alongside the message and cause.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func TransformError(message string, err error) *DomainError {
	return NewError(ErrorTypeTransform, message, err)
}

func UpstreamError(message string, err error) *DomainError {
	return NewError(ErrorTypeUpstream, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func TimeoutError(message string, err error) *DomainError {
	return NewError(ErrorTypeTimeout, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// TypeOf returns the domain error type of err, or empty string if err carries
// no DomainError in its chain.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

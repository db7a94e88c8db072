package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeExternalCall    = "EXTERNAL_CALL_ERROR"
	ErrCodeDataIntegrity   = "DATA_INTEGRITY_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidURL       = NewDomainError(ErrCodeValidation, "invalid or unsafe url")
	ErrInvalidScore     = NewDomainError(ErrCodeValidation, "lead score must be between 0 and 100")
	ErrDocumentTooShort = NewDomainError(ErrCodeValidation, "document is empty or too short to index")
)

// Not found errors
var (
	ErrLeadNotFound     = NewDomainError(ErrCodeNotFound, "lead not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Unsupported type errors
var (
	ErrUnsupportedDocumentType = NewDomainError(ErrCodeUnsupportedType, "unsupported document type")
)

// External call errors
var (
	ErrScrapeFailed = NewDomainError(ErrCodeExternalCall, "scraping failed")
)

// Data integrity errors
var (
	ErrCorruptStore = NewDomainError(ErrCodeDataIntegrity, "backing store is corrupted")
)

package errors

import "fmt"

// BizError is the single error kind for anticipated business failures.
// It carries a dotted name resolved against the response table at the
// boundary, plus an optional details payload (e.g. validation output).
type BizError struct {
	Name    string
	Details any
	Err     error
}

func (e *BizError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return e.Name
}

func (e *BizError) Unwrap() error {
	return e.Err
}

// Biz creates a business error with the given dotted name.
func Biz(name string) *BizError {
	return &BizError{Name: name}
}

// BizWithDetails attaches a payload surfaced in the response data.
func BizWithDetails(name string, details any) *BizError {
	return &BizError{Name: name, Details: details}
}

// Wrap keeps the underlying cause for logging.
func Wrap(name string, err error) *BizError {
	return &BizError{Name: name, Err: err}
}

// Common names used across services. Role-specific and feature names
// live next to the services that raise them.
const (
	NameBadRequest = "common.bad_request"
	NameNotFound   = "common.not_found"
	NameForbidden  = "common.forbidden"
	NameInternal   = "common.internal"
)

func BadRequest(details any) *BizError { return BizWithDetails(NameBadRequest, details) }
func NotFound() *BizError              { return Biz(NameNotFound) }
func Forbidden() *BizError             { return Biz(NameForbidden) }

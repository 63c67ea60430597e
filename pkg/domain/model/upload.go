package model

import "fmt"

// UploadItem is a single uploaded photo within a validation batch.
// Index is 1-based and follows the multipart part order.
type UploadItem struct {
	Index    int
	Filename string
	Data     []byte
}

// Size returns the raw byte size of the item
func (i *UploadItem) Size() int64 {
	return int64(len(i.Data))
}

// ErrorKind classifies a per-item validation failure
type ErrorKind string

const (
	KindTooLarge            ErrorKind = "too_large"
	KindUnsupportedFormat   ErrorKind = "unsupported_format"
	KindUnreadable          ErrorKind = "unreadable"
	KindCodeNotFound        ErrorKind = "code_not_found"
	KindResourceGone        ErrorKind = "resource_gone"
	KindResourceUnreachable ErrorKind = "resource_unreachable"
	KindDuplicateCode       ErrorKind = "duplicate_code"
)

// ValidationError records why one item of a batch was skipped. It is a
// domain value, not a Go error: the batch keeps going when one is produced.
type ValidationError struct {
	Index    int
	Filename string
	Kind     ErrorKind
	Message  string
}

// NewValidationError builds a ValidationError with the user-facing
// "[item N] (name) ..." prefix applied to the formatted message.
func NewValidationError(kind ErrorKind, item *UploadItem, format string, args ...any) ValidationError {
	return ValidationError{
		Index:    item.Index,
		Filename: item.Filename,
		Kind:     kind,
		Message: fmt.Sprintf("[item %d] (%s) %s",
			item.Index, item.Filename, fmt.Sprintf(format, args...)),
	}
}

// ValidateResponse is the JSON body of POST /validate
type ValidateResponse struct {
	OK     bool     `json:"ok"`
	Ticket string   `json:"ticket,omitempty"`
	Count  int      `json:"count,omitempty"`
	Errors []string `json:"errors"`
}

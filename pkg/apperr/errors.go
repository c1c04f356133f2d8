package apperr

import (
	"errors"
	"fmt"
)

// 错误类别
var (
	ErrValidation      = errors.New("validation error")
	ErrAuthentication  = errors.New("authentication error")
	ErrMalformedEvent  = errors.New("malformed event")
	ErrUpstream        = errors.New("upstream error")
	ErrNotFound        = errors.New("not found")
	ErrUnknownKey      = errors.New("unknown key")
	ErrInvalidFileType = errors.New("invalid file type")
)

// Error carries a kind plus the offending field, if any.
type Error struct {
	Kind  error
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation 输入校验失败
func Validation(field, msg string) error {
	return &Error{Kind: ErrValidation, Field: field, Msg: msg}
}

func Authentication(err error) error {
	return &Error{Kind: ErrAuthentication, Err: err}
}

func MalformedEvent(msg string, err error) error {
	return &Error{Kind: ErrMalformedEvent, Msg: msg, Err: err}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: ErrUpstream, Msg: msg, Err: err}
}

func NotFound(what, id string) error {
	return &Error{Kind: ErrNotFound, Field: what, Msg: fmt.Sprintf("%q", id)}
}

func UnknownKey(field, key string) error {
	return &Error{Kind: ErrUnknownKey, Field: field, Msg: fmt.Sprintf("%q", key)}
}

func InvalidFileType(mime string) error {
	return &Error{Kind: ErrInvalidFileType, Msg: mime}
}

// FieldOf returns the field attached to err, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// ValidationWrap reports err as a validation failure on field while keeping
// err reachable through errors.Is.
func ValidationWrap(field string, err error) error {
	return &Error{Kind: ErrValidation, Field: field, Err: err}
}

package strategy

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a stable category for programmatic error handling.
// Callers should branch on Kind rather than matching error strings.
type Kind string

const (
	// KindDecode covers malformed or out-of-range wire values.
	KindDecode Kind = "DecodeError"
	// KindInvalidLeafPlacement covers a Strategy leaf outside index 0, or more than one.
	KindInvalidLeafPlacement Kind = "InvalidLeafPlacement"
	// KindMissingRequiredField covers a variant field absent for the declared leaf type.
	KindMissingRequiredField Kind = "MissingRequiredField"
	// KindSignatureInconsistency covers redundant signature fields that disagree with r, s and v.
	KindSignatureInconsistency Kind = "SignatureInconsistency"
	// KindInvalidField covers present values that break a variant rule.
	KindInvalidField Kind = "InvalidField"
)

// Error is the package's structured error type.
//
// Field names the offending wire field (e.g. "lien.amount") when one applies.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, field, format string, args ...interface{}) error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, field string, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func decodeError(field, format string, args ...interface{}) error {
	return newError(KindDecode, field, format, args...)
}

func missingField(field string, t LeafType) error {
	return newError(KindMissingRequiredField, field, "required for %s leaf", t)
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ErrorField returns the field recorded on a structured error, or "".
func ErrorField(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Field
}

package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindForbidden          ErrorKind = "forbidden"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindQuotaExceeded      ErrorKind = "quota_exceeded"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
)

// Error is returned by every Repo operation that fails for a domain reason.
// errors.Is matches the exact named error, and also the bare kind sentinel.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

// Kind sentinels.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrQuotaExceeded      = &Error{Kind: KindQuotaExceeded}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

var (
	ErrItemNotAvailable      = &Error{Kind: KindInvalidTransition, Msg: "item not available"}
	ErrSelfRequest           = &Error{Kind: KindInvalidTransition, Msg: "cannot request own item"}
	ErrDuplicatePending      = &Error{Kind: KindInvalidTransition, Msg: "pending request already exists for this item"}
	ErrAlreadyResolved       = &Error{Kind: KindInvalidTransition, Msg: "request already resolved"}
	ErrNotApproved           = &Error{Kind: KindInvalidTransition, Msg: "request is not approved"}
	ErrItemAlreadyClaimed    = &Error{Kind: KindInvalidTransition, Msg: "item already claimed by another request"}
	ErrItemHasActiveRequests = &Error{Kind: KindInvalidTransition, Msg: "item has active requests"}
	ErrMonthlyQuota          = &Error{Kind: KindQuotaExceeded, Msg: "monthly request limit reached"}
)

func validationErr(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

func notFound(what string) error { return &Error{Kind: KindNotFound, Msg: what + " not found"} }

// storeErr classifies a gorm error. Domain errors pass through untouched.
func storeErr(what string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return &Error{Kind: KindStorageUnavailable, Msg: what, Err: fmt.Errorf("store: %w", err)}
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

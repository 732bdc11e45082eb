package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is a client-local or server-reported input problem. Msg is
// shown to the user as-is, so it should say what to do next.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnavailableError marks transient network/server failures. Callers degrade to
// a safe default instead of failing the flow.
type UnavailableError struct {
	Op  string
	Msg string
	Err error
}

func (e UnavailableError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "":
		return e.Op + " unavailable"
	default:
		return "service unavailable"
	}
}

func (e UnavailableError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// UserMessage returns the message a user should see for err, or fallback when
// err carries nothing presentable.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var (
		v ValidationError
		c ConflictError
		u UnavailableError
		n NotFoundError
	)
	switch {
	case errors.As(err, &v) && v.Msg != "":
		return v.Msg
	case errors.As(err, &c) && c.Msg != "":
		return c.Msg
	case errors.As(err, &u) && u.Msg != "":
		return u.Msg
	case errors.As(err, &n):
		return n.Error()
	}
	return fallback
}

// Package errmsg defines the player error domain and consistent formatting
// for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"
)

// Domain namespaces every error raised by the player.
const Domain = "vbplayer"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Player lifecycle
	OpOpen    Op = "open media"
	OpPrepare Op = "prepare player"
	OpDecode  Op = "decode media"
	OpSeek    Op = "seek"

	// Data player
	OpAppend      Op = "append data"
	OpEndOfStream Op = "end stream"

	// Configuration
	OpSettings Op = "read player settings"
	OpConfig   Op = "load configuration"

	// Demo application
	OpFeed        Op = "feed segments"
	OpResumeLoad  Op = "load resume position"
	OpResumeSave  Op = "save resume position"
	OpHistory     Op = "record play history"
	OpInitialize  Op = "initialize application"
	OpNotify      Op = "send notification"
	OpMPRISExpose Op = "expose MPRIS interface"
)

// Code classifies errors inside the domain.
type Code int

const (
	CodeUnknown Code = iota
	CodeInvalidArgument
	CodeUnsupportedSource
	CodeSourceUnavailable
	CodeMalformed
	CodeCodingMismatch
	CodeNoInit
	CodeDiscontinuity
	CodeEndOfStream
	CodeDecode
	CodeFailed
	CodeClosed
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeUnsupportedSource:
		return "unsupported source"
	case CodeSourceUnavailable:
		return "source unavailable"
	case CodeMalformed:
		return "malformed data"
	case CodeCodingMismatch:
		return "coding mismatch"
	case CodeNoInit:
		return "missing initialization"
	case CodeDiscontinuity:
		return "discontinuity"
	case CodeEndOfStream:
		return "end of stream"
	case CodeDecode:
		return "decode failure"
	case CodeFailed:
		return "player failed"
	case CodeClosed:
		return "player closed"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per code. Use errors.Is against these.
var (
	ErrInvalidArgument   = &sentinel{CodeInvalidArgument}
	ErrUnsupportedSource = &sentinel{CodeUnsupportedSource}
	ErrSourceUnavailable = &sentinel{CodeSourceUnavailable}
	ErrMalformed         = &sentinel{CodeMalformed}
	ErrCodingMismatch    = &sentinel{CodeCodingMismatch}
	ErrNoInit            = &sentinel{CodeNoInit}
	ErrDiscontinuity     = &sentinel{CodeDiscontinuity}
	ErrEndOfStream       = &sentinel{CodeEndOfStream}
	ErrDecode            = &sentinel{CodeDecode}
	ErrFailed            = &sentinel{CodeFailed}
	ErrClosed            = &sentinel{CodeClosed}
)

type sentinel struct{ code Code }

func (s *sentinel) Error() string { return Domain + ": " + s.code.String() }

// Error is an error raised inside the domain.
type Error struct {
	Op   Op
	Code Code
	Err  error
}

// New builds an *Error. Err may be nil.
func New(op Op, code Code, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

// Errorf builds an *Error with a formatted cause.
func Errorf(op Op, code Code, format string, args ...any) *Error {
	return &Error{Op: op, Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", Domain, e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s: %v", Domain, e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel carrying the same code.
func (e *Error) Is(target error) bool {
	if s, ok := target.(*sentinel); ok {
		return s.code == e.Code
	}
	return false
}

// CodeOf returns the domain code of err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var s *sentinel
	if errors.As(err, &s) {
		return s.code
	}
	return CodeUnknown
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

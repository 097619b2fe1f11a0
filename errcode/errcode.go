package errcode

// Code is a stable, driver-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Timeout: a required status condition did not appear within the bound.
	Timeout Code = "timeout"
	// BusFault: arbitration lost, bus error, or acknowledge failure observed
	// on the status register. Not distinguished further to the caller.
	BusFault Code = "bus_fault"
	// FailedStart: the start condition itself never completed. Distinguished
	// from Timeout because it triggers bus recovery.
	FailedStart Code = "failed_start"
	// InvalidArgument: a length constraint was violated, or a non-nil buffer
	// was required but absent.
	InvalidArgument Code = "invalid_argument"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match a wrapped E against its bare Code.
func (e *E) Is(target error) bool {
	if c, ok := target.(Code); ok {
		return e.C == c
	}
	return false
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

package errcode

// Code is a stable, codec-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (spec.md §6). Numerically these map to the negative
// return codes of the C-like ABI the core is modelled on; callers in Go
// never see the numbers, only these tagged values.
const (
	OK Code = "ok"

	InvalidArg Code = "invalid_arg"
	NoStream   Code = "no_stream"
	NoMessage  Code = "no_message"
	MsgSize    Code = "msg_size"
	Conflict   Code = "conflict"

	// BudgetExhausted is ConsumeSlot's "not enough budget, retry next
	// step" outcome. spec.md §7 classifies this as a normal, non-error
	// runtime condition, so callers must not treat it as an error — it
	// is returned as a distinct Code value, never wrapped in an error.
	BudgetExhausted Code = "budget_exhausted"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Op + ": " + string(e.C) + ": " + e.Msg
	}
	return e.Op + ": " + string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

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

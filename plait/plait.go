package plait

import (
	"fmt"
	"strings"
)

// DecodeError is the caller-facing decode failure. It wraps the
// underlying lex/parse/eval error and carries the offending source
// line for diagnostics.
type DecodeError struct {
	Message string
	Pos     Position
	Excerpt string // offending source line, when available
	Cause   error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "plait: %s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
	if e.Excerpt != "" {
		sb.WriteString("\n  ")
		sb.WriteString(e.Excerpt)
		sb.WriteString("\n  ")
		if e.Pos.Column > 1 {
			sb.WriteString(strings.Repeat(" ", e.Pos.Column-1))
		}
		sb.WriteString("^")
	}
	return sb.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Decode parses PLAIT text into a Value.
func Decode(text string) (*Value, error) {
	return DecodeWithOptions(text, DefaultParseOptions())
}

// DecodeWithOptions runs the full text -> tokens -> AST -> value
// pipeline. Any stage failure aborts the call; there is no
// partial-result recovery.
func DecodeWithOptions(text string, opts ParseOptions) (*Value, error) {
	root, err := ParseWithOptions(text, opts)
	if err != nil {
		return nil, decodeError(text, err)
	}
	v, err := Evaluate(root)
	if err != nil {
		return nil, decodeError(text, err)
	}
	return v, nil
}

// Encode converts a Value to PLAIT text.
func Encode(v *Value) (string, error) {
	return Emit(v)
}

// EncodeWithOptions converts a Value to PLAIT text with custom options.
func EncodeWithOptions(v *Value, opts EmitOptions) (string, error) {
	return EmitWithOptions(v, opts)
}

// decodeError wraps a pipeline error with its source excerpt.
func decodeError(text string, err error) error {
	var (
		msg string
		pos Position
	)
	switch e := err.(type) {
	case *LexError:
		msg, pos = e.Message, e.Pos
	case *ParseError:
		msg, pos = e.Message, e.Pos
	case *EvalError:
		msg, pos = e.Message, e.Pos
	default:
		msg = err.Error()
	}
	return &DecodeError{
		Message: msg,
		Pos:     pos,
		Excerpt: sourceLine(text, pos.Line),
		Cause:   err,
	}
}

// sourceLine returns the 1-based line from the input, or "".
func sourceLine(text string, line int) string {
	if line <= 0 {
		return ""
	}
	for i := 1; len(text) > 0; i++ {
		rest := text
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			rest = text[:nl]
			text = text[nl+1:]
		} else {
			text = ""
		}
		if i == line {
			return rest
		}
	}
	return ""
}

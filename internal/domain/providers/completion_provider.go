package providers

import (
	"context"
)

// FunctionParam describes one typed argument of a function schema.
type FunctionParam struct {
	Name        string
	Type        string // "string" or "array" (of strings)
	Description string
	Required    bool
}

// FunctionSchema declares a function the completion service may invoke in
// place of free text. Used for schema-constrained extraction.
type FunctionSchema struct {
	Name        string
	Description string
	Parameters  []FunctionParam
}

// FunctionCall is a structured invocation returned by the completion
// service in response to a FunctionSchema.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// StringArg returns the named argument as a string, or "" when absent or
// of the wrong type.
func (c *FunctionCall) StringArg(name string) string {
	if c == nil {
		return ""
	}
	if s, ok := c.Args[name].(string); ok {
		return s
	}
	return ""
}

// StringSliceArg returns the named argument as a string slice, tolerating
// the []any shape JSON decoding produces. Absent or malformed values
// yield nil.
func (c *FunctionCall) StringSliceArg(name string) []string {
	if c == nil {
		return nil
	}
	switch v := c.Args[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// CompletionProvider defines the interface for the generative
// text-completion service. Implementations may return malformed or
// partially-structured text; callers own recovery.
type CompletionProvider interface {
	// Complete sends a prompt and returns the raw text completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStructured asks the service to answer by invoking the given
	// function. It returns nil (with nil error) when the response contains
	// no function invocation; errors are reserved for infrastructure
	// failures.
	CompleteStructured(ctx context.Context, prompt string, schema FunctionSchema) (*FunctionCall, error)
}

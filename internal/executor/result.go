package executor

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Extension codes attached to errors produced by the executor itself.
const (
	CodeArgumentBinding = "ARGUMENT_BINDING_ERROR"
	CodeCancelled       = "CANCELLED"
)

// ErrCancelled is reported when the request context ends before execution
// completes. No data accompanies it.
var ErrCancelled = errors.New("request cancelled")

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Code returns the "code" extension, or "" when absent.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Cancelled reports whether execution stopped because the request ended.
func (r *ExecutionResult) Cancelled() bool {
	for _, e := range r.Errors {
		if e.Code() == CodeCancelled {
			return true
		}
	}
	return false
}

// extender is implemented by errors that carry GraphQL error extensions.
type extender interface {
	Extensions() map[string]any
}

func newLocatedError(err error, path Path) GraphQLError {
	ge := GraphQLError{Message: err.Error(), Path: path}
	var ext extender
	if errors.As(err, &ext) {
		ge.Extensions = ext.Extensions()
	}
	return ge
}

// OrderedMap is a response object that remembers the order in which its
// keys were first written, so results serialize in requested field order.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set writes value under key. Overwriting keeps the original position.
func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToPlain converts a response tree into nested map[string]any and []any,
// dropping key order. Useful for comparisons.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *OrderedMap:
		if t == nil {
			return nil
		}
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = ToPlain(t.values[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToPlain(item)
		}
		return out
	default:
		return v
	}
}

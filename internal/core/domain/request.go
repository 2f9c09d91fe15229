package domain

import "strings"

// Header is a single (name, value) pair, order-preserving so the HTTP Parser
// can round-trip a request without reshuffling semantically-ordered headers.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header pairs with case-insensitive lookup.
type Headers []Header

// Get returns the first value matching name case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, header := range h {
		if strings.EqualFold(header.Name, name) {
			return header.Value, true
		}
	}
	return "", false
}

// WithoutNames returns a copy of h with every header whose name matches any
// of names (case-insensitively) removed.
func (h Headers) WithoutNames(names ...string) Headers {
	out := make(Headers, 0, len(h))
	for _, header := range h {
		drop := false
		for _, name := range names {
			if strings.EqualFold(header.Name, name) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, header)
		}
	}
	return out
}

// Set appends a header, replacing any existing header with the same name.
func (h Headers) Set(name, value string) Headers {
	out := h.WithoutNames(name)
	return append(out, Header{Name: name, Value: value})
}

// BufferedRequest is a fully-read HTTP/1.1 request: method, origin-form
// target, ordered headers and raw body bytes. Streaming is out of scope
// (§1 Non-goals); the whole body is buffered before dispatch.
type BufferedRequest struct {
	Method  string
	Target  string // origin-form: path + optional "?" query
	Headers Headers
	Body    []byte
}

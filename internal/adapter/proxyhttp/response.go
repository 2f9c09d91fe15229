package proxyhttp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

// HopByHopHeaders are stripped in both directions (§4.3).
var HopByHopHeaders = []string{
	"Transfer-Encoding",
	"Content-Encoding",
	"Connection",
	"Keep-Alive",
}

// isProxyHeader reports whether name has the "Proxy-*" hop-by-hop prefix.
func isProxyHeader(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "proxy-")
}

// StripHopByHop removes the fixed hop-by-hop set plus any Proxy-* header, in
// either direction (§4.3).
func StripHopByHop(headers domain.Headers) domain.Headers {
	out := headers.WithoutNames(HopByHopHeaders...)
	filtered := make(domain.Headers, 0, len(out))
	for _, h := range out {
		if !isProxyHeader(h.Name) {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

// Response is what the client receives: status, headers and a fully
// buffered body (§3 Outcome.Success, §4.3).
type Response struct {
	StatusCode int
	Headers    domain.Headers
	Body       []byte
}

// NewResponse builds a client response from an upstream Success outcome,
// stripping hop-by-hop headers and setting Content-Length to match the
// buffered body (§4.3). Content-Encoding is always stripped because the body
// has already been consumed as decoded bytes, never re-encoded.
func NewResponse(statusCode int, upstreamHeaders domain.Headers, body []byte) Response {
	headers := StripHopByHop(upstreamHeaders)
	headers = headers.WithoutNames("Content-Length")
	headers = headers.Set("Content-Length", strconv.Itoa(len(body)))
	return Response{StatusCode: statusCode, Headers: headers, Body: body}
}

// NewJSONErrorResponse builds the structured JSON error envelope used for
// PoolEmpty/PoolExhausted replies (§7): {"error":{"message":..., "type":
// "proxy_error"}}.
func NewJSONErrorResponse(statusCode int, message string) Response {
	body := fmt.Sprintf(`{"error":{"message":%q,"type":"proxy_error"}}`, message)
	headers := domain.Headers{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Content-Length", Value: strconv.Itoa(len(body))},
	}
	return Response{StatusCode: statusCode, Headers: headers, Body: []byte(body)}
}

// Serialize writes the HTTP/1.1 response line, headers and body in wire
// format (§4.3 reverse direction).
func (r Response) Serialize() []byte {
	var buf bytes.Buffer
	reason := ReasonPhrase(r.StatusCode)
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.StatusCode, reason)
	for _, h := range r.Headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.Name, h.Value)
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}

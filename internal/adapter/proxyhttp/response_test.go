package proxyhttp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

func TestStripHopByHop_RemovesFixedSetAndProxyPrefixed(t *testing.T) {
	headers := domain.Headers{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Connection", Value: "keep-alive"},
		{Name: "Transfer-Encoding", Value: "chunked"},
		{Name: "Proxy-Authorization", Value: "Basic xyz"},
	}

	stripped := StripHopByHop(headers)

	assert.Len(t, stripped, 1)
	assert.Equal(t, "Content-Type", stripped[0].Name)
}

func TestNewResponse_SetsContentLengthFromBody(t *testing.T) {
	resp := NewResponse(200, domain.Headers{{Name: "Content-Type", Value: "application/json"}}, []byte(`{"ok":true}`))

	v, ok := resp.Headers.Get("Content-Length")
	assert.True(t, ok)
	assert.Equal(t, "11", v)
}

func TestNewResponse_StripsUpstreamHopByHopHeaders(t *testing.T) {
	resp := NewResponse(200, domain.Headers{{Name: "Connection", Value: "close"}}, nil)

	_, ok := resp.Headers.Get("Connection")
	assert.False(t, ok)
}

func TestNewJSONErrorResponse_BuildsProxyErrorEnvelope(t *testing.T) {
	resp := NewJSONErrorResponse(502, "All providers failed")

	assert.Equal(t, 502, resp.StatusCode)
	assert.Contains(t, string(resp.Body), `"message":"All providers failed"`)
	assert.Contains(t, string(resp.Body), `"type":"proxy_error"`)
}

func TestResponse_Serialize_ProducesWireFormat(t *testing.T) {
	resp := NewResponse(200, domain.Headers{{Name: "Content-Type", Value: "text/plain"}}, []byte("hello"))

	out := string(resp.Serialize())

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nhello"))
	assert.Contains(t, out, "Content-Type: text/plain\r\n")
}

package proxyhttp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clauderelay/proxypool/internal/core/domain"
)

func TestParseHeaderBlock_OrderedAndCaseSensitiveNamesPreserved(t *testing.T) {
	block := []byte("GET /v1/models HTTP/1.1\r\nHost: api.example.com\r\nAccept: */*\r\n")

	requestLine, headers, err := parseHeaderBlock(block)

	assert.NoError(t, err)
	assert.Equal(t, "GET /v1/models HTTP/1.1", requestLine)
	assert.Equal(t, "Host", headers[0].Name)
	assert.Equal(t, "Accept", headers[1].Name)
}

func TestParseHeaderBlock_MissingColonIsProtocolError(t *testing.T) {
	block := []byte("GET / HTTP/1.1\r\nMalformedHeaderLine\r\n")

	_, _, err := parseHeaderBlock(block)

	var protoErr *domain.ClientProtocolError
	assert.True(t, errors.As(err, &protoErr))
}

func TestParseRequestLine_Valid(t *testing.T) {
	method, target, err := parseRequestLine("POST /v1/chat HTTP/1.1")

	assert.NoError(t, err)
	assert.Equal(t, "POST", method)
	assert.Equal(t, "/v1/chat", target)
}

func TestParseRequestLine_UnsupportedVersion(t *testing.T) {
	_, _, err := parseRequestLine("GET / HTTP/2.0")

	var protoErr *domain.ClientProtocolError
	assert.True(t, errors.As(err, &protoErr))
}

func TestParseRequestLine_WrongFieldCount(t *testing.T) {
	_, _, err := parseRequestLine("GET /")

	var protoErr *domain.ClientProtocolError
	assert.True(t, errors.As(err, &protoErr))
}

func TestNormalizeTarget_OriginFormUnchanged(t *testing.T) {
	assert.Equal(t, "/v1/models?limit=10", NormalizeTarget("/v1/models?limit=10"))
}

func TestNormalizeTarget_AbsoluteFormReducedToOrigin(t *testing.T) {
	assert.Equal(t, "/v1/models", NormalizeTarget("http://proxy.local/v1/models"))
}

func TestNormalizeTarget_AbsoluteFormPreservesQuery(t *testing.T) {
	assert.Equal(t, "/v1/models?limit=10", NormalizeTarget("https://proxy.local/v1/models?limit=10"))
}

func TestNormalizeTarget_MissingLeadingSlashIsAdded(t *testing.T) {
	assert.Equal(t, "/v1/models", NormalizeTarget("v1/models"))
}

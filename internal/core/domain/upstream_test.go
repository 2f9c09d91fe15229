package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewUpstream_Valid(t *testing.T) {
	id := uuid.New()
	up, ok := NewUpstream(id, UpstreamConfig{
		Name:           "primary",
		BaseURL:        "https://api.example.com/v1",
		Credential:     "sk-test",
		StaticPriority: 10,
	})

	assert.True(t, ok)
	assert.Equal(t, id, up.ID)
	assert.Equal(t, "https://api.example.com/v1", up.NormalizedBaseURL())
}

func TestNewUpstream_EmptyCredentialInvalid(t *testing.T) {
	_, ok := NewUpstream(uuid.New(), UpstreamConfig{
		Name:    "no-credential",
		BaseURL: "https://api.example.com",
	})

	assert.False(t, ok)
}

func TestNewUpstream_MalformedBaseURLInvalid(t *testing.T) {
	_, ok := NewUpstream(uuid.New(), UpstreamConfig{
		Name:       "bad-url",
		BaseURL:    "not a url \x7f",
		Credential: "sk-test",
	})

	assert.False(t, ok)
}

func TestNewUpstream_RelativeURLInvalid(t *testing.T) {
	_, ok := NewUpstream(uuid.New(), UpstreamConfig{
		Name:       "relative",
		BaseURL:    "/just/a/path",
		Credential: "sk-test",
	})

	assert.False(t, ok)
}

func TestUpstream_NormalizedBaseURL_StripsTrailingSlash(t *testing.T) {
	up, ok := NewUpstream(uuid.New(), UpstreamConfig{
		Name:       "trailing-slash",
		BaseURL:    "https://api.example.com/v1/",
		Credential: "sk-test",
	})

	assert.True(t, ok)
	assert.Equal(t, "https://api.example.com/v1", up.NormalizedBaseURL())
}

func TestUpstream_Valid_NilReceiver(t *testing.T) {
	var up *Upstream
	assert.False(t, up.Valid())
}

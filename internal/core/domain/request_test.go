package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders_Get_CaseInsensitive(t *testing.T) {
	headers := Headers{{Name: "Content-Type", Value: "application/json"}}

	v, ok := headers.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", v)
}

func TestHeaders_Get_Missing(t *testing.T) {
	headers := Headers{{Name: "X-Foo", Value: "bar"}}

	_, ok := headers.Get("Authorization")
	assert.False(t, ok)
}

func TestHeaders_WithoutNames_RemovesAllMatches(t *testing.T) {
	headers := Headers{
		{Name: "Authorization", Value: "Bearer a"},
		{Name: "X-Api-Key", Value: "b"},
		{Name: "Accept", Value: "*/*"},
	}

	filtered := headers.WithoutNames("authorization", "x-api-key")

	assert.Len(t, filtered, 1)
	assert.Equal(t, "Accept", filtered[0].Name)
}

func TestHeaders_Set_ReplacesExisting(t *testing.T) {
	headers := Headers{{Name: "Authorization", Value: "old"}}

	updated := headers.Set("Authorization", "new")

	v, ok := updated.Get("Authorization")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Len(t, updated, 1)
}

func TestHeaders_Set_AppendsWhenAbsent(t *testing.T) {
	headers := Headers{{Name: "Accept", Value: "*/*"}}

	updated := headers.Set("Content-Length", "0")

	assert.Len(t, updated, 2)
	v, ok := updated.Get("content-length")
	assert.True(t, ok)
	assert.Equal(t, "0", v)
}

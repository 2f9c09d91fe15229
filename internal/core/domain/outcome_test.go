package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]SoftFailureReason{
		200: SoftFailureNone,
		201: SoftFailureNone,
		401: SoftFailureUnauthorized,
		403: SoftFailureUnauthorized,
		429: SoftFailureRateLimited,
		500: SoftFailureServerError,
		502: SoftFailureServerError,
		599: SoftFailureServerError,
	}

	for status, want := range cases {
		assert.Equal(t, want, ClassifyStatus(status), "status %d", status)
	}
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "soft_failure", OutcomeSoftFailure.String())
	assert.Equal(t, "hard_failure", OutcomeHardFailure.String())
}

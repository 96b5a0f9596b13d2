package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/givehub/payments/internal/pkg/payerrors"
)

func TestSanitize_CardNumberKeepsLastFour(t *testing.T) {
	out := Sanitize("declined for card 4111111111111111")
	assert.NotContains(t, out, "4111111111111111")
	assert.Contains(t, out, "****1111")

	out = Sanitize("card 4111-1111-1111-1234 expired")
	assert.NotContains(t, out, "1111-1111")
	assert.Contains(t, out, "****1234")
}

func TestSanitize_NationalID(t *testing.T) {
	out := Sanitize("holder id 123456789 mismatch")
	assert.NotContains(t, out, "123456789")
	assert.Contains(t, out, "[REDACTED-ID]")
}

func TestSanitize_CVV(t *testing.T) {
	out := Sanitize(`cvv: 123 rejected`)
	assert.NotContains(t, out, "123")
	assert.Contains(t, out, "[REDACTED]")
}

func TestSanitize_MethodToken(t *testing.T) {
	out := Sanitize("charge failed for tok_a1B2c3D4e5F6")
	assert.NotContains(t, out, "tok_a1B2c3D4e5F6")
	assert.Contains(t, out, "[REDACTED-TOKEN]")
}

func TestSanitize_PlainTextUntouched(t *testing.T) {
	msg := "processor returned http 503"
	assert.Equal(t, msg, Sanitize(msg))
}

func TestSanitizeMap(t *testing.T) {
	in := map[string]string{
		"campaign":    "winter-appeal",
		"card_number": "4111111111111111",
		"note":        "donor card 5555444433332222 on file",
	}

	out := SanitizeMap(in)

	assert.Equal(t, "winter-appeal", out["campaign"])
	assert.Equal(t, "[REDACTED]", out["card_number"])
	assert.Contains(t, out["note"], "****2222")

	// Input map untouched
	assert.Contains(t, in["note"], "5555444433332222")

	assert.Nil(t, SanitizeMap(nil))
}

func TestFingerprint_StablePerKindAndMessage(t *testing.T) {
	a := Fingerprint(payerrors.Unavailable("charge", errors.New("conn refused")))
	b := Fingerprint(payerrors.Unavailable("charge", errors.New("conn refused")))
	c := Fingerprint(payerrors.Timeout("charge", errors.New("conn refused")))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
	assert.Empty(t, Fingerprint(nil))
}

func TestFingerprint_HashesSanitizedMessage(t *testing.T) {
	withPAN := Fingerprint(errors.New("declined card 4111111111111111"))
	assert.False(t, strings.Contains(withPAN, "4111"))
}

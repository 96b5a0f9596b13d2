package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/givehub/payments/internal/pkg/payerrors"
)

var (
	// 13-19 digit card numbers, with or without separators
	panPattern = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	// 9-digit national identity numbers
	nationalIDPattern = regexp.MustCompile(`\b\d{9}\b`)
	// cvv/cvc key-value pairs in free-form detail
	cvvPattern = regexp.MustCompile(`(?i)\b(cvv|cvc|cvv2)["':=\s]+\d{3,4}\b`)
	// method tokens (tok_..., pm_...) issued by processors
	tokenPattern = regexp.MustCompile(`\b(tok|pm|card)_[A-Za-z0-9]{8,}\b`)

	nonDigit = regexp.MustCompile(`\D`)
)

// Sanitize redacts card numbers, national ids, CVVs and method tokens from
// free-form text before it is logged or persisted in an audit trail. Card
// numbers keep their last four digits.
func Sanitize(s string) string {
	s = panPattern.ReplaceAllStringFunc(s, func(match string) string {
		digits := nonDigit.ReplaceAllString(match, "")
		if len(digits) < 4 {
			return "[REDACTED]"
		}
		return "****" + digits[len(digits)-4:]
	})
	s = nationalIDPattern.ReplaceAllString(s, "[REDACTED-ID]")
	s = cvvPattern.ReplaceAllString(s, "$1=[REDACTED]")
	s = tokenPattern.ReplaceAllString(s, "[REDACTED-TOKEN]")
	return s
}

// SanitizeMap redacts every value of a metadata map, returning a copy.
func SanitizeMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if isSensitiveKey(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = Sanitize(v)
	}
	return out
}

func isSensitiveKey(k string) bool {
	k = strings.ToLower(k)
	switch k {
	case "card_number", "pan", "cvv", "cvc", "token", "national_id", "password":
		return true
	}
	return false
}

// Fingerprint produces a short stable hash of an error, used to correlate
// bursts of identical failures in breaker and audit logging. The message is
// sanitized before hashing so the fingerprint itself leaks nothing.
func Fingerprint(err error) string {
	if err == nil {
		return ""
	}
	kind := payerrors.KindInternal
	var pe *payerrors.Error
	if errors.As(err, &pe) {
		kind = pe.Kind
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", kind, Sanitize(err.Error()))))
	return hex.EncodeToString(sum[:])[:16]
}

package whatsapp

import (
	"fmt"
	"strings"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

// NormalizePhone strips the WhatsApp JID suffix and every non-digit
// character from a raw phone identifier.
func NormalizePhone(raw string) string {
	phone := strings.TrimSuffix(raw, "@c.us")
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchFormats expands a normalized phone number into the variants a
// lead's phone may be stored under. Brazilian numbers are commonly
// saved with or without country code and with local punctuation, so
// lookups try all of them. Numbers with fewer than 8 digits are
// rejected as too ambiguous to search safely.
func SearchFormats(raw string) ([]string, error) {
	phone := NormalizePhone(raw)
	if len(phone) < 8 {
		return nil, apperrors.Validation(fmt.Sprintf("phone number too short to search: %q", raw))
	}

	formats := []string{phone}

	last8 := phone[len(phone)-8:]
	formats = append(formats, last8)

	if len(phone) >= 9 {
		last9 := phone[len(phone)-9:]
		formats = append(formats, last9)

		// Local display formats: "(XX) XXXXX-XXXX" and "XX XXXXX-XXXX".
		if len(phone) >= 11 {
			ddd := phone[len(phone)-11 : len(phone)-9]
			prefix := last9[:5]
			suffix := last9[5:]
			formats = append(formats,
				fmt.Sprintf("(%s) %s-%s", ddd, prefix, suffix),
				fmt.Sprintf("%s %s-%s", ddd, prefix, suffix),
			)
		}
	}

	return formats, nil
}

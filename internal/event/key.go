package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace so that
// "Málaga ", "MALAGA" and "malaga" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// ContentKey creates a stable identifier for scraped records from the
// normalized title, the event day and the city. Two scrapes of the same
// event produce the same key even when ids, casing or accents differ.
func ContentKey(title, day, city string) string {
	h := sha1.New()
	h.Write([]byte(Fold(title) + "|" + strings.TrimSpace(day) + "|" + Fold(city)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

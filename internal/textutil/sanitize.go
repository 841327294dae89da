package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLabelRunes caps the length of a sanitized label.
const MaxLabelRunes = 80

// MaxLabelBytes caps the encoded length of a sanitized label so it stays a
// valid directory name under NAME_MAX.
const MaxLabelBytes = 200

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeLabel converts a playlist or category label into a lowercase token
// made of letters, digits, and single hyphens. Accents are folded away
// ("Café" becomes "cafe") and every run of other characters collapses to one
// hyphen, so "My Playlist!" becomes "my-playlist".
//
// The result never contains a path separator, a dot, whitespace, or a shell
// metacharacter. An empty return value means the label carried nothing
// usable and must be rejected by the caller.
func SanitizeLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	count := 0
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = count > 0
			continue
		}
		lower := unicode.ToLower(r)
		need := utf8.RuneLen(lower)
		if pendingDash {
			need++
		}
		if count >= MaxLabelRunes || b.Len()+need > MaxLabelBytes {
			break
		}
		if pendingDash {
			if count+1 >= MaxLabelRunes {
				break
			}
			b.WriteByte('-')
			count++
			pendingDash = false
		}
		b.WriteRune(lower)
		count++
	}
	return strings.Trim(b.String(), "-")
}

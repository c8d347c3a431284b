package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderKey is used when a name yields no identifier characters.
const PlaceholderKey = "subj"

// Keys are embedded in button payloads, which Telegram caps at 64 bytes.
// The longest payload prefix is "edit:sched:replace:" (19 bytes).
const (
	// MaxKeyLen is the longest key ValidKey accepts.
	MaxKeyLen = 40

	// slugLen leaves room for a "_N" suffix from UniqueKey.
	slugLen = 32
)

// separators become a single underscore in generated keys.
const separators = " -/\\,.:;()"

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

// ValidKey reports whether key is a non-empty run of at most MaxKeyLen
// lowercase ASCII letters, digits and underscores.
func ValidKey(key string) bool {
	if key == "" || len(key) > MaxKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !isKeyByte(key[i]) {
			return false
		}
	}
	return true
}

func isKeyByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

// Slugify derives a subject key from a display name.
//
// Cyrillic letters are transliterated, Latin letters lose their diacritics,
// separators collapse to one underscore and everything else is dropped.
// The result is cut to 32 bytes, trimmed of underscores and falls back to
// PlaceholderKey.
func Slugify(name string) string {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(name))
	lower = norm.NFC.String(lower)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	var b strings.Builder
	for _, r := range lower {
		if t, ok := cyrillic[r]; ok {
			b.WriteString(t)
			continue
		}
		if strings.ContainsRune(separators, r) || unicode.IsSpace(r) {
			b.WriteByte('_')
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		folded, _, err := transform.String(fold, string(r))
		if err != nil {
			continue
		}
		for i := 0; i < len(folded); i++ {
			if c := folded[i]; c != '_' && isKeyByte(c) {
				b.WriteByte(c)
			}
		}
	}

	key := strings.Join(strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' }), "_")
	if len(key) > slugLen {
		key = strings.TrimRight(key[:slugLen], "_")
	}
	if key == "" {
		return PlaceholderKey
	}
	return key
}

// UniqueKey returns base, or base_2, base_3, ... for the first candidate
// that taken rejects.
func UniqueKey(base string, taken func(string) bool) string {
	key := base
	for n := 2; taken(key); n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	return key
}

package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

func NowISO() string {
	return time.Now().Format(time.RFC3339)
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// Примитивная транслитерация кириллицы → латиница.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

func sanitizeSlug(s string) string {
	b := strings.Builder{}
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Slugify derives a URL-safe slug: plain ASCII pass first, then a Cyrillic
// transliteration pass, then a timestamped fallback so the result is never
// empty.
func Slugify(s string) string {
	if out := sanitizeSlug(s); out != "" {
		return out
	}
	tr := strings.Builder{}
	for _, r := range s {
		if rep, ok := cyrillic[unicode.ToLower(r)]; ok {
			tr.WriteString(rep)
		} else {
			tr.WriteRune(r)
		}
	}
	if out := sanitizeSlug(tr.String()); out != "" {
		return out
	}
	return "event-" + time.Now().Format("20060102150405")
}

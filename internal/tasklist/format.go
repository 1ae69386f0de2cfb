package tasklist

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// NoDate is shown for tasks without a due date.
const NoDate = "No fecha"

var monthsLong = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthsShort = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sept", "oct", "nov", "dic",
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date the es-ES way: "5 ene 2025". Unparsable values
// are returned unchanged.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoDate
	}
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthsShort[t.Month()-1], t.Year())
}

// FormatDateLong renders "5 de enero de 2025".
func FormatDateLong(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoDate
	}
	t, ok := parseDate(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsLong[t.Month()-1], t.Year())
}

// Initials takes the first letter of each word, upper-cased, at most two.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}

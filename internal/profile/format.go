package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// ToTitle turns a camelCase key into "Title Case" words and drops the per 10
// minutes and most in game suffixes upstream appends to average and best
// stats.
func ToTitle(key string) string {
	s := camelBoundary.ReplaceAllString(key, "$1 $2")
	s = strings.ReplaceAll(s, " Avg Per10Min", "")
	s = strings.ReplaceAll(s, " Most In Game", "")
	return titleCase(s)
}

// FormatKey is the label of a stat category or stat key.
func FormatKey(key string) string {
	switch key {
	case "best":
		return "Best (Most in game)"
	case "average":
		return "Average (per 10 minutes)"
	}
	return ToTitle(key)
}

// titleCase upper cases every letter that follows a non letter and lower
// cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// FormatValue renders a raw stat value. Whole numbers print without a
// fractional part.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	}
	return ""
}

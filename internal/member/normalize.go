package member

import "strings"

// Normalize rewrites a scanned or typed identifier into canonical form:
// uppercase, alphanumerics only, and an "ACM" prefix for bare digits or
// legacy "M" numbers. The function is idempotent.
func Normalize(identifier string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(identifier) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}

	if isDigits(cleaned) {
		return "ACM" + cleaned
	}
	if strings.HasPrefix(cleaned, "ACM") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "M") && isDigits(cleaned[1:]) {
		return "ACM" + cleaned[1:]
	}
	return cleaned
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

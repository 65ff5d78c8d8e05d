package validate

import (
	"fmt"
	"strings"
)

// Slugify lowercases the title and reduces it to a URL-safe dash-separated
// token string.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// AssignID derives a dataset-unique id from date and title, appending a
// numeric suffix on collision. The chosen id is registered in existing as a
// side effect so a batch of candidates never collides with itself.
func AssignID(date, title string, existing map[string]struct{}) string {
	base := Slugify(title)
	if base == "" {
		base = "case"
	}
	if date != "" {
		base = date + "-" + base
	}

	id := base
	for n := 2; ; n++ {
		if _, taken := existing[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	existing[id] = struct{}{}
	return id
}

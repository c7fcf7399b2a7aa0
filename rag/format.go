package rag

import (
	"regexp"
	"strings"
)

var (
	emptyHeaderRe = regexp.MustCompile(`^#+\s*$`)
	headerRe      = regexp.MustCompile(`^#{1,6}\s*`)
	boldRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe      = regexp.MustCompile(`\*(.*?)\*`)
)

// FormatForChat flattens markdown model output into plain chat text: headers
// become sentence text, bold/italic markers are stripped (best-effort,
// non-greedy; malformed markers are left as-is), list dashes become bullet
// points, and consecutive blank lines collapse to one.
func FormatForChat(answer string) string {
	if answer == "" {
		return ""
	}

	lines := strings.Split(answer, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if emptyHeaderRe.MatchString(line) {
			continue
		}

		line = headerRe.ReplaceAllString(line, "")
		line = boldRe.ReplaceAllString(line, "$1")
		line = italicRe.ReplaceAllString(line, "$1")

		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			cleaned = append(cleaned, "• "+strings.TrimSpace(line[2:]))
		} else {
			cleaned = append(cleaned, line)
		}
	}

	final := make([]string, 0, len(cleaned))
	for _, line := range cleaned {
		if line != "" || (len(final) > 0 && final[len(final)-1] != "") {
			final = append(final, line)
		}
	}

	return strings.TrimSpace(strings.Join(final, "\n"))
}

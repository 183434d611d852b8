package scan

import (
	"regexp"
	"strings"
)

var (
	schemeRE = regexp.MustCompile(`(?i)[a-z]+:`)
	hostRE   = regexp.MustCompile(`(?i)(?:[a-z]+\.)+[a-z]+(/|$)`)
)

// LinkTarget returns the URL a decoded text should open, mimicking phone
// scanners: text with a scheme is used as is and host-like text gets an
// http prefix.
func LinkTarget(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if schemeRE.MatchString(text) {
		return text, true
	}
	if hostRE.MatchString(text) {
		return "http://" + text, true
	}
	return "", false
}

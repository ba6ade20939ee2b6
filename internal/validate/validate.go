package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reDigit = regexp.MustCompile(`^[0-9]{1,18}$`)
)

// ID validates a numeric resource identifier (chair/estate ids).
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reDigit.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// NonNegative parses page/perPage style values. Signs and blanks are rejected.
func NonNegative(s string) (int, bool) {
	if !reDigit.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Email validates the optional contact on document requests.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Features splits a comma-joined feature filter, dropping blanks.
func Features(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

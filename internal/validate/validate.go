package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// Resource ids must stay free of the variant key delimiter.
	reID     = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)
	reGender = regexp.MustCompile(`^(men|women|Unisex)$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 64 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (product/user/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 40 {
		return "", false
	}
	return s, true
}

// Gender validates the allowed catalog gender enums.
func Gender(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reGender.MatchString(s)
}

// Password enforces a minimum length for login checks.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 64
}

package validation

import (
	"regexp"
	"strings"
	"sync"
)

// Built-in pattern names a descriptor can declare in its Pattern field.
const (
	PatternMobile     = "mobile"
	PatternNationalID = "national-id"
	PatternAadhaar    = "aadhaar"
	PatternEmail      = "email"
)

var (
	mobilePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	nationalIDPattern = regexp.MustCompile(`^\d{12}$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateMobile reports whether value is a 10 digit mobile number starting
// with 6-9.
func ValidateMobile(value string) bool {
	return mobilePattern.MatchString(value)
}

// ValidateNationalID reports whether value is exactly 12 digits.
func ValidateNationalID(value string) bool {
	return nationalIDPattern.MatchString(value)
}

// ValidateEmail reports whether value has the local@domain.tld shape.
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func builtinPattern(name string) (*regexp.Regexp, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PatternMobile:
		return mobilePattern, true
	case PatternNationalID, PatternAadhaar:
		return nationalIDPattern, true
	case PatternEmail:
		return emailPattern, true
	default:
		return nil, false
	}
}

// patternCache memoises compiled custom patterns. A nil entry records an
// expression that failed to compile.
var patternCache sync.Map

// resolvePattern returns the regexp for a declared pattern. Custom patterns
// are anchored to the whole value, like the HTML pattern attribute. Invalid
// expressions report false and are ignored by the validator.
func resolvePattern(pattern string) (*regexp.Regexp, bool) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, false
	}
	if re, ok := builtinPattern(pattern); ok {
		return re, true
	}
	if cached, ok := patternCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re, re != nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		patternCache.Store(pattern, (*regexp.Regexp)(nil))
		return nil, false
	}
	patternCache.Store(pattern, re)
	return re, true
}

package validation

import (
	"net/url"
	"regexp"
	"strings"
)

// IATACodePattern matches a three-letter airport or city code.
var IATACodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// PhoneNumberPattern matches an E.164 phone number.
var PhoneNumberPattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// ValidateIATACode checks if a code is a three-letter uppercase IATA code.
func ValidateIATACode(code string) bool {
	return IATACodePattern.MatchString(code)
}

// NormalizeIATACode trims and uppercases a code so sheet values like " par" match.
func NormalizeIATACode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidatePhoneNumber checks if a number is in E.164 format as Twilio expects.
func ValidatePhoneNumber(number string) bool {
	return PhoneNumberPattern.MatchString(number)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	// Parse the URL
	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	// Check scheme - only allow http and https
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	// Ensure host is present
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

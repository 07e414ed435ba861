// backend/src/security/validation/field_validator.go
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/username/jababank/backend/src/logger"
)

// ErrValidationFailed wraps every input validation error.
var ErrValidationFailed = errors.New("validation failed")

const (
	MaxElementIDLength = 64
	MaxEndpointLength  = 2048
	MaxHeaderCount     = 20
	MaxHeaderValueLen  = 4096
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateStringRegex checks if a string matches a given regex pattern.
func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateIntRange checks that val lies in [minVal, maxVal].
func ValidateIntRange(val int, fieldName string, minVal, maxVal int) error {
	if val < minVal || val > maxVal {
		logger.L.Warn("Integer value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return nil
}

// --- Specific Format Validators ---

var (
	elementIDRegex  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	headerNameRegex = regexp.MustCompile("^[!#$%&'*+.^_`|~0-9A-Za-z-]+$")
)

// ValidateElementID checks that an id can be used as an HTML element id.
func ValidateElementID(s, fieldName string) error {
	if err := ValidateStringNotEmpty(s, fieldName); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(s, MaxElementIDLength, fieldName); err != nil {
		return err
	}
	return ValidateStringRegex(s, elementIDRegex, fieldName, "letter followed by letters, digits, '-' or '_'")
}

// ValidateEndpoint accepts an absolute http(s) URL or a path starting with "/".
// Empty is allowed: the endpoint is optional.
func ValidateEndpoint(s, fieldName string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if err := ValidateStringMaxLength(trimmed, MaxEndpointLength, fieldName); err != nil {
		return err
	}
	if err := CheckXSSPatterns(trimmed, fieldName, "endpoint"); err != nil {
		return err
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid URL: %v", ErrValidationFailed, fieldName, err)
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: %s must use http or https", ErrValidationFailed, fieldName)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: %s has no host", ErrValidationFailed, fieldName)
		}
		return nil
	}
	if !strings.HasPrefix(u.Path, "/") {
		return fmt.Errorf("%w: %s must be absolute or start with '/'", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateEndpointOrigin checks that endpoint, once resolved against base,
// stays on base's scheme and host. Protocol-relative paths ("//host/x") are
// resolved first, so they cannot escape either.
func ValidateEndpointOrigin(endpoint, fieldName string, base *url.URL) error {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil
	}
	if base == nil {
		return fmt.Errorf("%w: %s cannot be checked without an upstream origin", ErrValidationFailed, fieldName)
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid URL: %v", ErrValidationFailed, fieldName, err)
	}
	resolved := base.ResolveReference(ref)
	if !strings.EqualFold(resolved.Scheme, base.Scheme) || !strings.EqualFold(resolved.Host, base.Host) {
		logger.L.Warn("Endpoint outside upstream origin rejected", "field", fieldName, "host", resolved.Host, "upstream", base.Host)
		return fmt.Errorf("%w: %s must stay on the upstream origin %s://%s", ErrValidationFailed, fieldName, base.Scheme, base.Host)
	}
	return nil
}

// ValidateHTTPMethod allows the methods a list endpoint can reasonably take.
func ValidateHTTPMethod(method string) error {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "", http.MethodGet, http.MethodPost:
		return nil
	}
	return fmt.Errorf("%w: method %q is not allowed", ErrValidationFailed, method)
}

// ValidateHeaders checks caller-supplied request headers.
func ValidateHeaders(headers map[string]string) error {
	if len(headers) > MaxHeaderCount {
		return fmt.Errorf("%w: at most %d headers are allowed", ErrValidationFailed, MaxHeaderCount)
	}
	for name, value := range headers {
		if err := ValidateStringRegex(name, headerNameRegex, "header name", "RFC 7230 token"); err != nil {
			return err
		}
		if err := ValidateStringMaxLength(value, MaxHeaderValueLen, "header "+name); err != nil {
			return err
		}
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%w: header %s contains a line break", ErrValidationFailed, name)
		}
	}
	return nil
}

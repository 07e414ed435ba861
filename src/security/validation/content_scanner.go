// backend/src/security/validation/content_scanner.go
package validation

import (
	"fmt"
	"regexp"

	"github.com/username/jababank/backend/src/logger"
)

var (
	// Common XSS vectors. Contextual output encoding is the primary defense.
	xssPatternsRegex = regexp.MustCompile(
		`(?i)<script|onerror=|onmouseover=|onfocus=|onload=|javascript:|vbscript:|<iframe|<object|<embed|<style|<link|data:text/html`,
	)
)

func truncateForLog(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// CheckXSSPatterns detects basic XSS patterns in caller-supplied widget
// options such as endpoints and header values.
func CheckXSSPatterns(s, fieldName, contextID string) error {
	if xssPatternsRegex.MatchString(s) {
		errMsg := fmt.Sprintf("potential XSS pattern detected in field '%s'", fieldName)
		logger.L.Warn(errMsg, "contextID", contextID, "contentPreview", truncateForLog(s, 50))
		return fmt.Errorf("%w: %s", ErrValidationFailed, errMsg)
	}
	return nil
}

package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateScale rejects scale factors that cannot name a variant.
// Scales must be finite and at least 1.
func ValidateScale(s float64) error {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return New(ErrCodeInvalidInput, "scale must be a finite number")
	}
	if s < 1 {
		return New(ErrCodeInvalidInput, "scale must be >= 1, got %v", s)
	}
	return nil
}

// ValidateRelPath validates a folder or file name that is joined below the
// output directory. It must stay inside that directory.
//
// Validation rules:
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//
// An empty path is allowed and means the output directory itself.
func ValidateRelPath(path string) error {
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path %q contains invalid characters", path)
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path %q must be relative (cannot start with /)", path)
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path %q cannot contain path traversal sequences (..)", path)
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path %q cannot contain backslashes", path)
	}

	return nil
}

// ValidateClassPrefix checks that a CSS class prefix only uses characters
// that are safe in a class selector without escaping.
func ValidateClassPrefix(prefix string) error {
	for _, r := range prefix {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidInput, "css prefix %q contains %q (allowed: letters, digits, '-', '_')", prefix, r)
		}
	}
	if prefix != "" && unicode.IsDigit(rune(prefix[0])) {
		return New(ErrCodeInvalidInput, "css prefix %q cannot start with a digit", prefix)
	}
	return nil
}

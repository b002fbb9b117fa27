package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxPathParamLength defines the maximum allowed length for a path parameter
	MaxPathParamLength = 64
)

var (
	// ErrEmptyPathParam is returned for an empty or blank path parameter
	ErrEmptyPathParam = errors.New("path parameter is empty")
	// ErrPathParamTooLong is returned when a path parameter exceeds MaxPathParamLength
	ErrPathParamTooLong = errors.New("path parameter too long")
	// ErrInvalidPathParam is returned when a path parameter could escape its segment
	ErrInvalidPathParam = errors.New("path parameter contains invalid characters")
)

// dangerousPatterns contains patterns that could change the target of a templated URL
var dangerousPatterns = []*regexp.Regexp{
	// traversal and separators, raw or percent-encoded
	regexp.MustCompile(`(^|/)\.\.?($|/)`),
	regexp.MustCompile(`(?i)%2e%2e|%2f|%5c|%00`),
	// scheme injection
	regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*:`),
}

// ValidatePathParam validates a value that is substituted into a single URL
// path segment. The value is returned unchanged; surrounding whitespace is
// rejected like any other invalid character.
func ValidatePathParam(param string) (string, error) {
	if strings.TrimSpace(param) == "" {
		return "", ErrEmptyPathParam
	}

	if len(param) > MaxPathParamLength {
		return "", ErrPathParamTooLong
	}

	if param == "." || param == ".." {
		return "", ErrInvalidPathParam
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(param) {
			return "", ErrInvalidPathParam
		}
	}

	for _, char := range param {
		if !isValidPathChar(char) {
			return "", ErrInvalidPathParam
		}
	}

	return param, nil
}

// isValidPathChar checks if a character is safe inside one path segment
func isValidPathChar(char rune) bool {
	// Allow letters, numbers and unreserved punctuation
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == '-' || char == '_' || char == '.' || char == '~' ||
		char == '@' || char == '+'
}

package user

import (
	"net/http"

	apperrors "user-webclient/pkg/errors"
)

// StatusRule rewrites a response status into an application error.
type StatusRule struct {
	Match func(statusCode int) bool
	Err   error
}

// StatusIs matches exactly one status code.
func StatusIs(code int) func(int) bool {
	return func(statusCode int) bool { return statusCode == code }
}

// StatusBetween matches codes in [lo, hi].
func StatusBetween(lo, hi int) func(int) bool {
	return func(statusCode int) bool { return statusCode >= lo && statusCode <= hi }
}

// DefaultStatusRules maps 404 and 503; everything else passes through.
func DefaultStatusRules() []StatusRule {
	return []StatusRule{
		{Match: StatusIs(http.StatusNotFound), Err: apperrors.ErrAPINotFound},
		{Match: StatusIs(http.StatusServiceUnavailable), Err: apperrors.ErrServerNotResponding},
	}
}

// mapStatus returns the error of the first matching rule, or nil.
func mapStatus(rules []StatusRule, statusCode int) error {
	for _, rule := range rules {
		if rule.Match != nil && rule.Match(statusCode) {
			return rule.Err
		}
	}
	return nil
}

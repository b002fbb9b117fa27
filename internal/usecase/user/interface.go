package user

import (
	"context"
	"net/http"

	domain "user-webclient/internal/domain/user"
)

// Client performs GET requests against the remote user API. template is a
// path such as "/users/{id}" and param is substituted for "{id}".
// A transport failure is returned as an error; any received response,
// whatever its status, is returned as a Response.
type Client interface {
	Get(ctx context.Context, template, param string) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string // e.g. "418 I'm a teapot"
	Method     string
	URL        string // fully expanded request URL
	Header     http.Header
	Body       []byte
}

// Successful reports whether the response has a 2xx status.
func (r *Response) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Executor defines the request policies available for fetching users.
type Executor interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByIDAsync(ctx context.Context, id string) *Future
	GetWithRetry(ctx context.Context, id string) (domain.User, error)
	GetWithRetryAsync(ctx context.Context, id string) *Future
	GetWithFallback(ctx context.Context, id string) domain.User
	GetWithErrorMapping(ctx context.Context, id string) (domain.User, error)
}

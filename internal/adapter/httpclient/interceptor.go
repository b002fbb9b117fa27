package httpclient

import (
	"context"
	"net/http"

	"user-webclient/pkg/logger"
)

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *http.Request) error

// NewRequestIDInterceptor propagates the request ID from ctx in the
// X-Request-ID header, generating one when ctx has none.
// An existing header is left untouched.
func NewRequestIDInterceptor() RequestInterceptor {
	return NewRequestIDInterceptorFor(logger.HeaderRequestID)
}

// NewRequestIDInterceptorFor is NewRequestIDInterceptor with a custom header name
func NewRequestIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = logger.HeaderRequestID
	}
	return func(ctx context.Context, req *http.Request) error {
		if req.Header.Get(header) == "" {
			_, id := logger.EnsureRequestID(ctx)
			req.Header.Set(header, id)
		}
		return nil
	}
}

// NewTraceContextInterceptor forwards the W3C trace context of ctx, if any,
// in the traceparent header.
func NewTraceContextInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *http.Request) error {
		logger.InjectTrace(ctx, req.Header)
		return nil
	}
}

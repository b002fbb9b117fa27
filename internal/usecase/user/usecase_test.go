package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	domain "user-webclient/internal/domain/user"
	apperrors "user-webclient/pkg/errors"
)

const testUserBody = `{"id":1,"name":"Eric Cartman","email":"eric.cartman@email.com"}`

var expectedUser = domain.User{ID: 1, Name: "Eric Cartman", Email: "eric.cartman@email.com"}

// MockClient is a mock implementation of the Client interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Get(ctx context.Context, template, param string) (*Response, error) {
	args := m.Called(ctx, template, param)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

func okResponse(body string) *Response {
	return &Response{
		StatusCode: 200,
		Status:     "200 OK",
		Method:     "GET",
		URL:        "http://api.test/users/1",
		Body:       []byte(body),
	}
}

func statusResponse(code int, status string) *Response {
	return &Response{
		StatusCode: code,
		Status:     status,
		Method:     "GET",
		URL:        "http://api.test/broken-url/1",
	}
}

// Test helper to create a usecase with a mock client and a short retry delay
func setupTestUsecase(t *testing.T, opts ...Option) (*Usecase, *MockClient) {
	mockClient := new(MockClient)
	opts = append([]Option{WithRetryPolicy(DefaultMaxRetries, time.Millisecond)}, opts...)
	uc := New(mockClient, zaptest.NewLogger(t), opts...)
	return uc, mockClient
}

// ==================== GET BY ID TESTS ====================

func TestGetByID_Success(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(okResponse(testUserBody), nil)

	u, err := uc.GetByID(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
	mockClient.AssertExpectations(t)
}

func TestGetByID_Idempotent(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(okResponse(testUserBody), nil)

	first, err := uc.GetByID(ctx, "1")
	require.NoError(t, err)

	for range 5 {
		u, err := uc.GetByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, first, u)
	}
	mockClient.AssertNumberOfCalls(t, "Get", 6)
}

func TestGetByID_HTTPErrorPropagates(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(statusResponse(404, "404 Not Found"), nil)

	u, err := uc.GetByID(ctx, "1")

	require.Error(t, err)
	assert.True(t, u.IsZero())
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Equal(t, apperrors.KindClient, apperrors.KindOf(err))
}

func TestGetByID_TransportErrorPropagates(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()
	netErr := apperrors.NewNetworkError("GET", "http://api.test/users/1", errors.New("connection refused"))

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(nil, netErr)

	_, err := uc.GetByID(ctx, "1")

	assert.Same(t, netErr, err)
}

func TestGetByID_DecodeError(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(okResponse(`{"id":"not-a-number"`), nil)

	_, err := uc.GetByID(ctx, "1")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))
}

func TestGetByID_EmptyBody(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(okResponse(""), nil)

	u, err := uc.GetByID(ctx, "1")

	require.NoError(t, err)
	assert.True(t, u.IsZero())
}

func TestGetByID_InvalidID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "blank", id: "  "},
		{name: "surrounding whitespace", id: " 1 "},
		{name: "traversal", id: "../admin"},
		{name: "query", id: "1?x=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockClient := setupTestUsecase(t)

			_, err := uc.GetByID(context.Background(), tt.id)

			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			mockClient.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGetByIDAsync_MatchesSync(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		err  error
	}{
		{name: "success", resp: okResponse(testUserBody)},
		{name: "http error", resp: statusResponse(500, "500 Internal Server Error")},
		{name: "transport error", err: errors.New("API is down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockClient := setupTestUsecase(t)
			ctx := context.Background()
			mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(tt.resp, tt.err)

			syncUser, syncErr := uc.GetByID(ctx, "1")
			asyncUser, asyncErr := uc.GetByIDAsync(ctx, "1").Await(ctx)

			assert.Equal(t, syncUser, asyncUser)
			assert.Equal(t, syncErr, asyncErr)
		})
	}
}

func TestGetByIDAsync_DoesNotBlockCaller(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()
	release := make(chan time.Time)

	mockClient.On("Get", ctx, UsersURLTemplate, "1").
		WaitUntil(release).
		Return(okResponse(testUserBody), nil)

	future := uc.GetByIDAsync(ctx, "1")

	select {
	case <-future.Done():
		t.Fatal("future completed before the response was released")
	default:
	}

	close(release)
	u, err := future.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
}

func TestFuture_AwaitCancelled(t *testing.T) {
	// The request outlives the test, so it must not log through zaptest
	mockClient := new(MockClient)
	uc := New(mockClient, zap.NewNop())
	release := make(chan time.Time)
	defer close(release)

	mockClient.On("Get", mock.Anything, UsersURLTemplate, "1").
		WaitUntil(release).
		Return(okResponse(testUserBody), nil)

	future := uc.GetByIDAsync(context.Background(), "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := future.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompletedFuture(t *testing.T) {
	f := CompletedFuture(expectedUser, nil)

	select {
	case <-f.Done():
	default:
		t.Fatal("completed future is not done")
	}
	u, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
}

// ==================== RETRY TESTS ====================

func TestGetWithRetry_ApiKeepsFailing(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(nil, errors.New("API is down"))

	_, err := uc.GetWithRetry(ctx, "1")

	require.Error(t, err)
	assert.Equal(t, "Retries exhausted: 3/3", err.Error())
	cause := errors.Unwrap(err)
	require.NotNil(t, cause)
	assert.Equal(t, "Something went wrong: API is down", cause.Error())
	assert.Equal(t, apperrors.KindRetryExhausted, apperrors.KindOf(err))
	mockClient.AssertNumberOfCalls(t, "Get", 4)
}

func TestGetWithRetry_AnyFailureStatus(t *testing.T) {
	for _, code := range []int{418, 500, 503, 404} {
		uc, mockClient := setupTestUsecase(t)
		ctx := context.Background()

		mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(code, ""), nil)

		_, err := uc.GetWithRetry(ctx, "1")

		require.Error(t, err)
		assert.Equal(t, "Retries exhausted: 3/3", err.Error())
		mockClient.AssertNumberOfCalls(t, "Get", 4)
	}
}

func TestGetWithRetry_EventuallySucceeds(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(500, "500 Internal Server Error"), nil).Twice()
	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(okResponse(testUserBody), nil).Once()

	u, err := uc.GetWithRetry(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
	mockClient.AssertNumberOfCalls(t, "Get", 3)
}

func TestGetWithRetry_FirstAttemptSucceeds(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(okResponse(testUserBody), nil)

	u, err := uc.GetWithRetry(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
	mockClient.AssertNumberOfCalls(t, "Get", 1)
}

func TestGetWithRetry_WaitsFixedDelay(t *testing.T) {
	delay := 20 * time.Millisecond
	uc, mockClient := setupTestUsecase(t, WithRetryPolicy(2, delay))
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(nil, errors.New("API is down"))

	start := time.Now()
	_, err := uc.GetWithRetry(ctx, "1")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, "Retries exhausted: 2/2", err.Error())
	assert.GreaterOrEqual(t, elapsed, 2*delay)
	mockClient.AssertNumberOfCalls(t, "Get", 3)
}

func TestGetWithRetry_RetryIfStopsEarly(t *testing.T) {
	uc, mockClient := setupTestUsecase(t, WithRetryIf(apperrors.IsRetryable))
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(404, "404 Not Found"), nil)

	_, err := uc.GetWithRetry(ctx, "1")

	require.Error(t, err)
	assert.Equal(t, "Something went wrong: 404 Not Found from GET http://api.test/broken-url/1", err.Error())
	mockClient.AssertNumberOfCalls(t, "Get", 1)
}

func TestGetWithRetry_ContextCancelledDuringDelay(t *testing.T) {
	uc, mockClient := setupTestUsecase(t, WithRetryPolicy(3, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.New("API is down"))

	_, err := uc.GetWithRetry(ctx, "1")

	assert.ErrorIs(t, err, context.Canceled)
	mockClient.AssertNumberOfCalls(t, "Get", 1)
}

func TestGetWithRetryAsync(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(nil, errors.New("API is down"))

	_, err := uc.GetWithRetryAsync(ctx, "1").Await(ctx)

	require.Error(t, err)
	assert.Equal(t, "Retries exhausted: 3/3", err.Error())
}

func TestNew_Defaults(t *testing.T) {
	uc := New(new(MockClient), zap.NewNop())

	assert.Equal(t, DefaultMaxRetries, uc.retry.maxRetries)
	assert.Equal(t, 100*time.Millisecond, uc.retry.delay)
	assert.Len(t, uc.rules, 2)
}

// ==================== FALLBACK TESTS ====================

func TestGetWithFallback_ReturnsEmptyUser(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	mockClient := new(MockClient)
	uc := New(mockClient, zap.New(core))
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(503, "503 Service Unavailable"), nil)

	u := uc.GetWithFallback(ctx, "1")

	assert.Equal(t, domain.User{}, u)
	require.Equal(t, 1, logs.FilterMessage("An error has occurred").Len())
}

func TestGetWithFallback_TransportError(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(nil, errors.New("API is down"))

	assert.True(t, uc.GetWithFallback(ctx, "1").IsZero())
}

func TestGetWithFallback_InvalidID(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)

	assert.True(t, uc.GetWithFallback(context.Background(), "").IsZero())
	mockClient.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetWithFallback_InvalidIDLogsCallerID(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	mockClient := new(MockClient)
	uc := New(mockClient, zap.New(core))

	assert.True(t, uc.GetWithFallback(context.Background(), "../admin").IsZero())

	entries := logs.FilterMessage("An error has occurred").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "../admin", entries[0].ContextMap()["id"])
	mockClient.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetWithFallback_Success(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(okResponse(testUserBody), nil)

	assert.Equal(t, expectedUser, uc.GetWithFallback(ctx, "1"))
}

// ==================== ERROR MAPPING TESTS ====================

func TestGetWithErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		resp        *Response
		expectedErr string
		mapped      error
	}{
		{
			name:        "not found",
			resp:        statusResponse(404, "404 Not Found"),
			expectedErr: "API not found",
			mapped:      apperrors.ErrAPINotFound,
		},
		{
			name:        "service unavailable",
			resp:        statusResponse(503, "503 Service Unavailable"),
			expectedErr: "Server is not responding",
			mapped:      apperrors.ErrServerNotResponding,
		},
		{
			name:        "unmapped client error passes through",
			resp:        statusResponse(418, "418 I'm a teapot"),
			expectedErr: "418 I'm a teapot from GET http://api.test/broken-url/1",
		},
		{
			name:        "unmapped server error passes through",
			resp:        statusResponse(500, "500 Internal Server Error"),
			expectedErr: "500 Internal Server Error from GET http://api.test/broken-url/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockClient := setupTestUsecase(t)
			ctx := context.Background()
			mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(tt.resp, nil)

			_, err := uc.GetWithErrorMapping(ctx, "1")

			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err.Error())
			if tt.mapped != nil {
				assert.ErrorIs(t, err, tt.mapped)
			}
			mockClient.AssertNumberOfCalls(t, "Get", 1)
		})
	}
}

func TestGetWithErrorMapping_SkipsBodyOnMappedStatus(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()
	resp := statusResponse(404, "404 Not Found")
	resp.Body = []byte("not json at all")

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(resp, nil)

	_, err := uc.GetWithErrorMapping(ctx, "1")

	assert.ErrorIs(t, err, apperrors.ErrAPINotFound)
}

func TestGetWithErrorMapping_Success(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(okResponse(testUserBody), nil)

	u, err := uc.GetWithErrorMapping(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, expectedUser, u)
}

func TestGetWithErrorMapping_RangeRules(t *testing.T) {
	uc, mockClient := setupTestUsecase(t, WithStatusMapping(
		StatusRule{Match: StatusBetween(400, 499), Err: apperrors.ErrAPINotFound},
		StatusRule{Match: StatusBetween(500, 599), Err: apperrors.ErrServerNotResponding},
	))
	ctx := context.Background()

	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(418, "418 I'm a teapot"), nil).Once()
	mockClient.On("Get", ctx, BrokenURLTemplate, "1").Return(statusResponse(500, "500 Internal Server Error"), nil).Once()

	_, err := uc.GetWithErrorMapping(ctx, "1")
	assert.ErrorIs(t, err, apperrors.ErrAPINotFound)

	_, err = uc.GetWithErrorMapping(ctx, "1")
	assert.ErrorIs(t, err, apperrors.ErrServerNotResponding)
}

// ==================== CONCURRENCY ====================

func TestUsecase_ConcurrentCalls(t *testing.T) {
	uc, mockClient := setupTestUsecase(t)
	ctx := context.Background()

	mockClient.On("Get", ctx, UsersURLTemplate, "1").Return(okResponse(testUserBody), nil)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := uc.GetByID(ctx, "1")
			assert.NoError(t, err)
			assert.Equal(t, expectedUser, u)
		}()
	}
	wg.Wait()
	mockClient.AssertNumberOfCalls(t, "Get", 20)
}

package gateway

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestGateway(t *testing.T, baseURL string, token string) *Gateway {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	gw, err := New(Config{BaseURL: baseURL, Logger: log}, staticToken(token))
	require.NoError(t, err)
	gw.backoff = time.Millisecond
	return gw
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "abc123")
	require.NoError(t, gw.Get(t.Context(), "/api/bookings", nil, nil))

	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestProtectedCallFailsFastWithoutToken(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "")
	err := gw.Get(t.Context(), "/api/bookings", nil, nil)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
	assert.Equal(t, int32(0), calls.Load(), "no request should be sent")
}

func TestPublicCallWorksWithoutToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "")
	require.NoError(t, gw.Post(t.Context(), "/api/auth/login", nil, map[string]string{}, nil, Public()))
	assert.Empty(t, gotAuth)
}

func TestListingRetrySucceedsAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			// Drop the connection so the client sees a transport failure.
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "tok")

	var out []any
	require.NoError(t, gw.Get(t.Context(), "/api/parking/spots", nil, &out, WithRetry()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close() // nothing listens here anymore

	gw := newTestGateway(t, "http://"+addr, "tok")
	err = gw.Get(t.Context(), "/api/parking/spots", nil, nil, WithRetry())

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNetwork), "got %v", err)
}

func TestMutationsNeverRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "tok")

	// Even if a caller mistakenly passes WithRetry, a POST gets one attempt.
	err := gw.Post(t.Context(), "/api/bookings", nil, map[string]int{"parking_space_id": 1}, nil, WithRetry())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "tok")
	err := gw.Get(t.Context(), "/api/parking/spots", nil, nil, WithRetry())

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindServer))
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnauthorizedResponseSignalsLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer ts.Close()

	gw := newTestGateway(t, ts.URL, "stale-token")
	err := gw.Get(t.Context(), "/api/bookings", nil, nil)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
	assert.Equal(t, "Could not validate credentials", err.Error())
}

func TestTimeoutSurfacesAsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	gw, err := New(Config{BaseURL: ts.URL, Timeout: 50 * time.Millisecond, Logger: log}, staticToken("tok"))
	require.NoError(t, err)

	err = gw.Get(t.Context(), "/api/bookings", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNetwork), "got %v", err)
}

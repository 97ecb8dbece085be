package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityparkhub/parkctl/internal/gateway"
	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
	"github.com/cityparkhub/parkctl/internal/session"
)

func newTestAuth(t *testing.T, baseURL string) (*Service, *session.Store) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	gw, err := gateway.New(gateway.Config{BaseURL: baseURL, Logger: log}, store)
	require.NoError(t, err)

	return NewService(gw, store, log), store
}

func TestLoginStoresSession(t *testing.T) {
	var gotBody Credentials
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login is a public endpoint")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "issued-token",
			TokenType:   "bearer",
			User:        &session.User{ID: 9, FullName: "Dana Driver", Email: "dana@example.com"},
		})
	}))
	defer ts.Close()

	svc, store := newTestAuth(t, ts.URL)

	user, err := svc.Login(t.Context(), Credentials{
		Email:      "dana@example.com",
		Password:   "hunter22",
		RememberMe: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "dana@example.com", gotBody.Email)
	assert.True(t, gotBody.RememberMe)
	assert.Equal(t, "Dana Driver", user.FullName)

	// The session is durable and immediately effective.
	assert.Equal(t, "issued-token", store.Token())
	assert.True(t, store.IsLoggedIn())
	require.NotNil(t, store.User())
	assert.Equal(t, 9, store.User().ID)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	svc, _ := newTestAuth(t, ts.URL)

	_, err := svc.Login(t.Context(), Credentials{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, int32(0), calls.Load())
}

func TestRegisterRejectsPasswordMismatchLocally(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	svc, _ := newTestAuth(t, ts.URL)

	err := svc.Register(t.Context(), Registration{
		FullName:        "Dana Driver",
		Email:           "dana@example.com",
		Phone:           "555-0100",
		Password:        "hunter2222",
		ConfirmPassword: "different1",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "confirmpassword must match password")
	assert.Equal(t, int32(0), calls.Load())
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := newTestAuth(t, "http://127.0.0.1:0")
	require.NoError(t, store.SetSession("tok", &session.User{ID: 1}))

	require.NoError(t, svc.Logout())
	assert.False(t, store.IsLoggedIn())
}

func TestProfileRequiresSession(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	svc, _ := newTestAuth(t, ts.URL)

	_, err := svc.Profile(t.Context())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
	assert.Equal(t, int32(0), calls.Load())
}

func TestProfileRefreshesStoredUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(session.User{ID: 9, FullName: "Dana D. Driver", Email: "dana@example.com"})
	}))
	defer ts.Close()

	svc, store := newTestAuth(t, ts.URL)
	require.NoError(t, store.SetSession("tok", &session.User{ID: 9, FullName: "Dana Driver"}))

	u, err := svc.Profile(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Dana D. Driver", u.FullName)
	assert.Equal(t, "Dana D. Driver", store.User().FullName)
}

func TestIdentityDecodesStoredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   "9",
		"email": "dana@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	svc, store := newTestAuth(t, "http://127.0.0.1:0")
	require.NoError(t, store.SetToken(signed))

	// The client never knows the server secret; the claims are only decoded.
	info, err := svc.Identity()
	require.NoError(t, err)
	assert.Equal(t, "9", info.Subject)
	assert.Equal(t, "dana@example.com", info.Email)
	assert.False(t, info.Expired())
}

func TestIdentityExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "9",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	svc, store := newTestAuth(t, "http://127.0.0.1:0")
	require.NoError(t, store.SetToken(signed))

	info, err := svc.Identity()
	require.NoError(t, err)
	assert.True(t, info.Expired())
}

func TestIdentityWithoutSession(t *testing.T) {
	svc, _ := newTestAuth(t, "http://127.0.0.1:0")

	_, err := svc.Identity()
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

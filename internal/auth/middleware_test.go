package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedSession(t *testing.T, stores *repository.Stores, expiresIn time.Duration) (*models.User, string) {
	t.Helper()
	user := &models.User{Username: "alice", Name: "Alice"}
	require.NoError(t, stores.Users.Create(context.Background(), user))

	token, err := GenerateSessionToken()
	require.NoError(t, err)
	require.NoError(t, stores.Sessions.Create(context.Background(), &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(expiresIn),
	}))
	return user, token
}

func TestMiddlewareResolvesUser(t *testing.T) {
	stores := repository.NewMemoryStores()
	user, token := seedSession(t, stores, SessionDuration)

	var seen *models.User
	handler := Middleware(stores.Sessions, stores.Users, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserFromContext(r.Context())
			assert.NotNil(t, RequestFromContext(r.Context()))
		}))

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)
}

func TestMiddlewarePassesThroughWithoutCookie(t *testing.T) {
	stores := repository.NewMemoryStores()

	called := false
	handler := Middleware(stores.Sessions, stores.Users, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.Nil(t, UserFromContext(r.Context()))
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.True(t, called, "unauthenticated requests still reach the handler")
}

func TestMiddlewareClearsUnknownSessionCookie(t *testing.T) {
	stores := repository.NewMemoryStores()

	handler := Middleware(stores.Sessions, stores.Users, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, UserFromContext(r.Context()))
		}))

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestMiddlewareRenewsSessionPastHalfway(t *testing.T) {
	stores := repository.NewMemoryStores()
	_, token := seedSession(t, stores, SessionDuration/4)

	handler := Middleware(stores.Sessions, stores.Users, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	session, err := stores.Sessions.Find(context.Background(), token)
	require.NoError(t, err)
	assert.Greater(t, session.ExpiresAt.Sub(time.Now()), SessionDuration/2, "expiry pushed out")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value, "cookie refreshed with the same token")
}

func TestMiddlewareDoesNotRenewFreshSession(t *testing.T) {
	stores := repository.NewMemoryStores()
	_, token := seedSession(t, stores, SessionDuration)

	handler := Middleware(stores.Sessions, stores.Users, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies(), "fresh sessions are left alone")
}

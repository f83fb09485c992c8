package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, accountID, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	return signed
}

func TestParseToken(t *testing.T) {
	accountID := uuid.New()

	t.Run("Valid", func(t *testing.T) {
		id, err := auth.ParseToken(signToken(t, accountID.String(), "provider"), testSecret)
		require.NoError(t, err)
		assert.Equal(t, accountID, id.AccountID)
		assert.Equal(t, auth.RoleProvider, id.Role)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := auth.ParseToken("", testSecret)
		assert.ErrorIs(t, err, auth.ErrEmptyToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := auth.ParseToken(signToken(t, accountID.String(), "buyer"), []byte("other"))
		assert.Error(t, err)
	})

	t.Run("BadAccountID", func(t *testing.T) {
		_, err := auth.ParseToken(signToken(t, "not-a-uuid", "buyer"), testSecret)
		assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := auth.ParseToken(signToken(t, accountID.String(), "admin"), testSecret)
		assert.ErrorIs(t, err, auth.ErrInvalidClaims)
	})
}

func TestMiddleware(t *testing.T) {
	accountID := uuid.New()

	var gotIdentity auth.Identity

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		require.True(t, ok)
		gotIdentity = id
		w.WriteHeader(http.StatusOK)
	})

	handler := auth.Middleware(testSecret)(next)

	t.Run("Authorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, accountID.String(), "buyer"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, accountID, gotIdentity.AccountID)
		assert.Equal(t, auth.RoleBuyer, gotIdentity.Role)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mishael-Joe/soraxi/utils"
)

func signedToken(t *testing.T, role, storeID string) string {
	t.Helper()
	utils.JwtKey = []byte("test-secret")

	var (
		token string
		err   error
	)
	if storeID != "" {
		token, err = utils.GenerateStoreJWT("652f1a2b3c4d5e6f78901234", "ada@example.com", role, storeID)
	} else {
		token, err = utils.GenerateJWT("652f1a2b3c4d5e6f78901234", "ada@example.com", role)
	}
	require.NoError(t, err)
	return token
}

func claimsCapturingHandler(captured **utils.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(UserContextKey).(*utils.Claims)
		*captured = claims
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signedToken(t, "user", "")

	var captured *utils.Claims
	handler := AuthMiddleware(claimsCapturingHandler(&captured))

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "652f1a2b3c4d5e6f78901234", captured.UserID)
	assert.Equal(t, "ada@example.com", captured.Email)
	assert.Equal(t, "user", captured.Role)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic abc123"},
		{name: "garbage token", header: "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			r := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	run := func(t *testing.T, role string) int {
		token := signedToken(t, role, "")
		handler := AuthMiddleware(AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		r := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, run(t, "admin"))
	assert.Equal(t, http.StatusForbidden, run(t, "user"))
}

func TestStoreMiddleware(t *testing.T) {
	run := func(t *testing.T, storeID string) int {
		token := signedToken(t, "user", storeID)
		handler := AuthMiddleware(StoreMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		r := httptest.NewRequest(http.MethodGet, "/store/orders", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, run(t, "652f1a2b3c4d5e6f78905678"))
	assert.Equal(t, http.StatusForbidden, run(t, ""))
}

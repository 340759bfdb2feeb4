package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	id     Identity
	active bool
}

// accountTable resolves identities from an in-memory set of stored accounts.
type accountTable struct {
	rows map[int64]account
	err  error
}

func (t accountTable) ResolveIdentity(_ context.Context, userID int64) (Identity, error) {
	if t.err != nil {
		return Identity{}, t.err
	}
	row, ok := t.rows[userID]
	if !ok {
		return Identity{}, ErrUnknownAccount
	}
	if !row.active {
		return Identity{}, ErrAccountInactive
	}
	return row.id, nil
}

func testAccounts() accountTable {
	return accountTable{rows: map[int64]account{
		3: {id: Identity{UserID: 3, Email: "admin@campus.edu", Role: RoleAdmin}, active: true},
		7: {id: Identity{UserID: 7, Email: "student@campus.edu", Role: RoleStudent}, active: true},
		8: {id: Identity{UserID: 8, Email: "gone@campus.edu", Role: RoleStudent}},
		// issued as ADMIN, demoted since
		9: {id: Identity{UserID: 9, Email: "former@campus.edu", Role: RoleStudent}, active: true},
	}}
}

func bearerFor(t *testing.T, id Identity) string {
	token, err := IssueToken(id, TokenAccess, "secret")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddlewareHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	refreshToken, _ := IssueToken(Identity{UserID: 1, Email: "student@campus.edu", Role: RoleStudent}, TokenRefresh, "secret")

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
	}{
		{"Empty header", "", http.StatusUnauthorized, "Authorization header required"},
		{"Invalid format", "Token abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"Empty token", "Bearer ", http.StatusUnauthorized, "Token is empty"},
		{"Garbage token", "Bearer abc", http.StatusUnauthorized, "Invalid or malformed token"},
		{"Refresh token", "Bearer " + refreshToken, http.StatusUnauthorized, "Access token required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			c.Request = req

			AuthMiddleware("secret", testAccounts())(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedError)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware("secret", testAccounts()))

	var got Identity
	router.GET("/me", func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		got = id
		c.Status(http.StatusOK)
	})

	token, _ := IssueToken(Identity{UserID: 7, Email: "student@campus.edu", Role: RoleStudent}, TokenAccess, "secret")
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Identity{UserID: 7, Email: "student@campus.edu", Role: RoleStudent}, got)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OptionalAuthMiddleware("secret", testAccounts()))
	router.GET("/", func(c *gin.Context) {
		_, ok := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	t.Run("anonymous passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		token, _ := IssueToken(Identity{UserID: 3, Email: "admin@campus.edu", Role: RoleAdmin}, TokenAccess, "secret")
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.JSONEq(t, `{"authenticated":true}`, w.Body.String())
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		caller         *Identity
		expectedStatus int
	}{
		{"Anonymous", nil, http.StatusUnauthorized},
		{"Student", &Identity{UserID: 2, Role: RoleStudent}, http.StatusForbidden},
		{"Admin", &Identity{UserID: 1, Role: RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)
			if tt.caller != nil {
				WithIdentity(c, *tt.caller)
			}

			RequireRole(RoleAdmin)(c)

			if tt.expectedStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
				return
			}
			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(identityKey, "not-an-identity")
	_, ok = GetUserID(c)
	assert.False(t, ok)

	WithIdentity(c, Identity{UserID: 9, Role: RoleStudent})
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestAuthMiddleware_StoredAccountState(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		accounts       AccountResolver
		tokenFor       Identity
		expectedStatus int
		expectedBody   string
	}{
		{"Active student", testAccounts(), Identity{UserID: 7, Role: RoleStudent}, http.StatusOK, ""},
		{"Deactivated after issue", testAccounts(), Identity{UserID: 8, Role: RoleStudent}, http.StatusForbidden, "Account is deactivated"},
		{"Deleted after issue", testAccounts(), Identity{UserID: 42, Role: RoleStudent}, http.StatusUnauthorized, "Account no longer exists"},
		{"Lookup failure", accountTable{err: errors.New("db down")}, Identity{UserID: 7, Role: RoleStudent}, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", AuthMiddleware("secret", tt.accounts), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", bearerFor(t, tt.tokenFor))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestAuthMiddleware_RoleFromStoredAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", AuthMiddleware("secret", testAccounts()), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearerFor(t, Identity{UserID: 9, Email: "former@campus.edu", Role: RoleAdmin}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAuthMiddleware_DeactivatedAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", OptionalAuthMiddleware("secret", testAccounts()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", bearerFor(t, Identity{UserID: 8, Role: RoleStudent}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

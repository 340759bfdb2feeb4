package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

var student = Identity{UserID: 1, Email: "student@campus.edu", Role: RoleStudent}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("correctPassword")
	require.NoError(t, err)
	assert.NotEqual(t, "correctPassword", hashed)

	again, _ := HashPassword("correctPassword")
	assert.NotEqual(t, hashed, again, "bcrypt salts every hash")

	assert.True(t, CheckPassword(hashed, "correctPassword"))
	assert.False(t, CheckPassword(hashed, "wrongPassword"))
	assert.False(t, CheckPassword(hashed, ""))
	assert.False(t, CheckPassword("not-a-hash", "correctPassword"))
}

func TestIssueToken_EmptySecret(t *testing.T) {
	token, err := IssueToken(student, TokenAccess, "")

	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	assert.Empty(t, token)
}

func TestIssueToken_RoundTrip(t *testing.T) {
	admin := Identity{UserID: 42, Email: "admin@campus.edu", Role: RoleAdmin}

	token, err := IssueToken(admin, TokenAccess, testSecret)
	require.NoError(t, err)

	claims, err := ParseToken(token, TokenAccess, testSecret)
	require.NoError(t, err)

	assert.Equal(t, admin, claims.Identity())
	assert.Equal(t, TokenAccess, claims.Kind)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, jwtIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, jwtAudience)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, AccessTokenTTL, ttl)
}

func TestIssuePair(t *testing.T) {
	pair, err := IssuePair(student, "access-secret", "refresh-secret")
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	_, err = ParseToken(pair.Access, TokenAccess, "access-secret")
	assert.NoError(t, err)

	refresh, err := ParseToken(pair.Refresh, TokenRefresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, RefreshTokenTTL, refresh.ExpiresAt.Sub(refresh.IssuedAt.Time))

	_, err = IssuePair(student, "access-secret", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestParseToken_Rejects(t *testing.T) {
	access, _ := IssueToken(student, TokenAccess, testSecret)
	refresh, _ := IssueToken(student, TokenRefresh, testSecret)

	expired := func() string {
		past := time.Now().Add(-time.Hour)
		claims := &Claims{
			UserID: 1,
			Role:   RoleStudent,
			Kind:   TokenAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  jwt.ClaimStrings{jwtAudience},
				IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
				ExpiresAt: jwt.NewNumericDate(past),
			},
		}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return s
	}()

	foreignIssuer := func() string {
		claims := &Claims{
			UserID: 1,
			Kind:   TokenAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Audience:  jwt.ClaimStrings{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return s
	}()

	tests := []struct {
		name    string
		token   string
		kind    TokenKind
		secret  string
		wantErr error
	}{
		{"wrong secret", access, TokenAccess, "wrong-secret", ErrInvalidToken},
		{"garbage", "invalid.token.format", TokenAccess, testSecret, ErrInvalidToken},
		{"expired", expired, TokenAccess, testSecret, ErrTokenExpired},
		{"foreign issuer", foreignIssuer, TokenAccess, testSecret, ErrInvalidToken},
		{"refresh used as access", refresh, TokenAccess, testSecret, ErrInvalidTokenType},
		{"access used as refresh", access, TokenRefresh, testSecret, ErrInvalidTokenType},
		{"empty secret", access, TokenAccess, "", ErrEmptyJWTSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, tt.kind, tt.secret)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.True(t, Identity{Role: RoleAdmin}.IsAdmin())
	assert.False(t, student.IsAdmin())

	assert.True(t, ValidRole(RoleStudent))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole(""))
}

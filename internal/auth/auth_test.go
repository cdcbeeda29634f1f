package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
	Cost = bcrypt.MinCost
}

type fixture struct {
	tokens *TokenMaker
	users  *repository.MemoryUsers
	guard  *Guard
	user   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := repository.NewMemoryUsers(repository.NewMemoryStore())
	u := &domain.User{Email: "ann@example.com", PasswordHash: "secret-hash", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(context.Background(), u))
	tokens := NewTokenMaker("test-secret", time.Hour)
	return &fixture{tokens: tokens, users: users, guard: NewGuard(tokens, users), user: u}
}

func contextWithHeader(header string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func TestAuthenticateValidToken(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(f.user.ID)
	require.NoError(t, err)

	c := contextWithHeader("Bearer " + tok)
	require.NoError(t, f.guard.Authenticate(c))
	got, ok := UserFrom(c)
	require.True(t, ok)
	assert.Equal(t, f.user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, f.user.ID.Hex(), c.GetString(UserIDKey))
}

func TestAuthenticateRejects(t *testing.T) {
	f := newFixture(t)
	good, err := f.tokens.Issue(f.user.ID)
	require.NoError(t, err)

	expiredMaker := NewTokenMaker("test-secret", time.Hour)
	expiredMaker.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredMaker.Issue(f.user.ID)
	require.NoError(t, err)

	foreign, err := NewTokenMaker("other-secret", time.Hour).Issue(f.user.ID)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: f.user.ID.Hex()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"missing":       "",
		"no scheme":     good,
		"wrong scheme":  "Basic " + good,
		"extra parts":   "Bearer " + good + " trailing",
		"garbage":       "Bearer not.a.token",
		"expired":       "Bearer " + expired,
		"wrong secret":  "Bearer " + foreign,
		"alg none":      "Bearer " + none,
		"scheme only":   "Bearer",
		"empty bearer ": "Bearer   ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			c := contextWithHeader(header)
			err := f.guard.Authenticate(c)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
			assert.Equal(t, "Not authorized", err.Error())
			_, ok := UserFrom(c)
			assert.False(t, ok)
		})
	}
}

func TestAuthenticateDeletedOrInactiveUser(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(f.user.ID)
	require.NoError(t, err)

	inactive := &domain.User{Email: "off@example.com", IsActive: false}
	require.NoError(t, f.users.Create(context.Background(), inactive))
	offTok, err := f.tokens.Issue(inactive.ID)
	require.NoError(t, err)
	err = f.guard.Authenticate(contextWithHeader("Bearer " + offTok))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	f.users.Remove(f.user.ID)
	err = f.guard.Authenticate(contextWithHeader("Bearer " + tok))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(f.user.ID)
	require.NoError(t, err)

	c := contextWithHeader("Bearer " + tok)
	require.NoError(t, f.guard.Authenticate(c))

	assert.NoError(t, f.guard.Authorize(domain.RoleCustomer, domain.RoleAdmin)(c))
	err = f.guard.Authorize(domain.RoleAdmin)(c)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = f.guard.Authorize(domain.RoleAdmin)(contextWithHeader(""))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

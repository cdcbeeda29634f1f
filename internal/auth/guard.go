package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/router"
)

const (
	userKey   = "auth.user"
	UserIDKey = "userId"
)

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// Guard resolves bearer tokens to live users.
type Guard struct {
	tokens *TokenMaker
	users  UserFinder
}

func NewGuard(tokens *TokenMaker, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate requires "Authorization: Bearer <token>". Every failure is the
// same 401 so callers learn nothing about which check failed.
func (g *Guard) Authenticate(c *gin.Context) error {
	notAuthorized := apperr.Unauthenticated("Not authorized")

	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return notAuthorized
	}
	id, err := g.tokens.Verify(token)
	if err != nil {
		return notAuthorized
	}
	user, err := g.users.FindByID(c.Request.Context(), id)
	if err != nil || user == nil || !user.IsActive {
		return notAuthorized
	}
	user.PasswordHash = ""
	c.Set(userKey, user)
	c.Set(UserIDKey, user.ID.Hex())
	return nil
}

// Authorize allows only the given roles. It must run after Authenticate.
func (g *Guard) Authorize(roles ...domain.Role) router.HandlerFunc {
	return func(c *gin.Context) error {
		user, ok := UserFrom(c)
		if !ok {
			return apperr.Unauthenticated("Not authorized")
		}
		for _, r := range roles {
			if user.Role == r {
				return nil
			}
		}
		return apperr.Forbidden("Forbidden")
	}
}

// UserFrom returns the identity attached by Authenticate.
func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", false
	}
	return fields[1], true
}

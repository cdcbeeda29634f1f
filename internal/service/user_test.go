package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.user.Register(ctx, RegisterInput{Name: "Ann Marie Lee", Email: " Ann@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "Ann", u.FirstName)
	assert.Equal(t, "Marie Lee", u.LastName)
	assert.Equal(t, domain.RoleCustomer, u.Role)

	stored, err := e.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	_, err = e.user.Register(ctx, RegisterInput{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "x"})
	requireKind(t, apperr.KindInvalidInput, err)

	token, who, err := e.user.Login(ctx, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, who.ID)

	_, _, err = e.user.Login(ctx, "ann@example.com", "wrong")
	requireKind(t, apperr.KindUnauthenticated, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, _, err = e.user.Login(ctx, "nobody@example.com", "secret1")
	requireKind(t, apperr.KindUnauthenticated, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, _, err = e.user.Login(ctx, "", "")
	requireKind(t, apperr.KindInvalidInput, err)
}

func TestRegisterRequiresFields(t *testing.T) {
	e := newEnv(t)
	for _, in := range []RegisterInput{
		{Email: "a@b.com", Password: "pw"},
		{FirstName: "Ann", Email: "a@b.com", Password: "pw"},
		{Name: "Ann", Password: "pw"},
		{Name: "Ann", Email: "a@b.com"},
	} {
		_, err := e.user.Register(context.Background(), in)
		requireKind(t, apperr.KindInvalidInput, err)
	}

	u, err := e.user.Register(context.Background(), RegisterInput{FirstName: "Ann", LastName: "Lee", Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.Name)
}

func TestRegisterLongPassword(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.user.Register(ctx, RegisterInput{Name: "Ann Lee", Email: "ann@example.com", Password: strings.Repeat("x", 80)})
	requireKind(t, apperr.KindInvalidInput, err)
	assert.Equal(t, []string{"password"}, err.(*apperr.Error).Fields)

	// multi-byte runes count by byte
	_, err = e.user.Register(ctx, RegisterInput{Name: "Ann Lee", Email: "ann@example.com", Password: strings.Repeat("é", 37)})
	requireKind(t, apperr.KindInvalidInput, err)

	_, err = e.user.Register(ctx, RegisterInput{Name: "Ann Lee", Email: "ann@example.com", Password: strings.Repeat("x", auth.MaxPasswordBytes)})
	require.NoError(t, err)
	_, _, err = e.user.Login(ctx, "ann@example.com", strings.Repeat("x", auth.MaxPasswordBytes))
	require.NoError(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, e.users.Create(ctx, &domain.User{Email: "off@example.com", PasswordHash: hash, IsActive: false}))

	_, _, err = e.user.Login(ctx, "off@example.com", "pw")
	requireKind(t, apperr.KindUnauthenticated, err)
	assert.Equal(t, "Account is inactive", err.Error())
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u, err := e.user.Register(ctx, RegisterInput{Name: "Ann Lee", Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)

	phone := "555-0101"
	updated, err := e.user.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{Phone: &phone, Address: &domain.Address{City: "Austin"}})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "Austin", updated.Address.City)
	assert.Equal(t, "Ann", updated.FirstName)

	got, err := e.user.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = e.user.Profile(ctx, primitive.NewObjectID())
	requireKind(t, apperr.KindNotFound, err)
}

func TestContactSubmit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.contact.Submit(ctx, ContactInput{Name: "Ann", Email: "ann@example.com", Subject: "Hi"})
	requireKind(t, apperr.KindInvalidInput, err)

	_, err = e.contact.Submit(ctx, ContactInput{Name: "Ann", Email: "not-an-email", Subject: "Hi", Message: "Hello"})
	requireKind(t, apperr.KindInvalidInput, err)

	r, err := e.contact.Submit(ctx, ContactInput{Name: " Ann ", Email: "ANN@example.com", Subject: "Hi", Message: "  Hello  "})
	require.NoError(t, err)
	assert.False(t, r.ID.IsZero())
	assert.False(t, r.SubmittedAt.IsZero())
}

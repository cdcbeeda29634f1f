package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

type RegisterInput struct {
	Name      string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserSummary is the public shape of a user.
type UserSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Role           domain.Role        `json:"role"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	Phone          string             `json:"phone"`
	Address        domain.Address     `json:"address"`
	ProfilePicture string             `json:"profilePicture"`
}

func Summarize(u *domain.User) *UserSummary {
	return &UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		FirstName:      u.Profile.FirstName,
		LastName:       u.Profile.LastName,
		Phone:          u.Profile.Phone,
		Address:        u.Profile.Address,
		ProfilePicture: u.ProfilePicture,
	}
}

type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenMaker
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenMaker) *UserService {
	return &UserService{users: users, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserSummary, error) {
	name := strings.TrimSpace(in.Name)
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if (name == "" && (first == "" || last == "")) || email == "" || in.Password == "" {
		return nil, apperr.InvalidInput("First name, last name, email, and password are required")
	}
	if name == "" {
		name = first + " " + last
	}
	if first == "" && last == "" {
		parts := strings.Fields(name)
		first = parts[0]
		last = strings.Join(parts[1:], " ")
	}

	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperr.InvalidInput("Password must be at most 72 bytes", "password")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperr.InvalidInput("Password must be at most 72 bytes", "password")
		}
		return nil, apperr.Internal(err)
	}
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		Profile:      domain.Profile{FirstName: first, LastName: last},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.InvalidInput("Email is already registered", "email")
		}
		return nil, apperr.Internal(err)
	}
	return Summarize(u), nil
}

// Login returns a bearer token and the user. Unknown email and wrong password
// share one message.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *UserSummary, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperr.InvalidInput("Email and password are required", "email", "password")
	}
	bad := apperr.Unauthenticated("Invalid email or password")
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, bad
	}
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, bad
	}
	if !u.IsActive {
		return "", nil, apperr.Unauthenticated("Account is inactive")
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	return token, Summarize(u), nil
}

func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*UserSummary, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return Summarize(u), nil
}

// UpdateProfile applies the given fields only. Email, password and role are
// not reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd domain.ProfileUpdate) (*UserSummary, error) {
	u, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return Summarize(u), nil
}

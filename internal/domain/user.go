package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type Profile struct {
	FirstName string  `bson:"firstName" json:"firstName"`
	LastName  string  `bson:"lastName" json:"lastName"`
	Phone     string  `bson:"phone,omitempty" json:"phone"`
	Address   Address `bson:"address" json:"address"`
}

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"password" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Profile        Profile            `bson:"profile" json:"profile"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProfileUpdate carries only the fields a user may change about themselves.
// Nil means "leave as is".
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Phone          *string
	Address        *Address
	ProfilePicture *string
}

func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.Address == nil && u.ProfilePicture == nil
}

// Apply mutates user in place.
func (u ProfileUpdate) Apply(user *User) {
	if u.FirstName != nil {
		user.Profile.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.Profile.LastName = *u.LastName
	}
	if u.Phone != nil {
		user.Profile.Phone = *u.Phone
	}
	if u.Address != nil {
		user.Profile.Address = *u.Address
	}
	if u.ProfilePicture != nil {
		user.ProfilePicture = *u.ProfilePicture
	}
}

type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

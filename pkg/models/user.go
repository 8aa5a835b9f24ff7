package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents a registered account. The password field holds a bcrypt
// hash and is never serialized into API responses.
type User struct {
	ID                   bson.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName            string        `json:"first_name" bson:"first_name" validate:"required,max=100"`
	LastName             string        `json:"last_name" bson:"last_name" validate:"required,max=100"`
	Email                string        `json:"email" bson:"email" validate:"required,email"`
	Password             string        `json:"-" bson:"password"`
	Role                 string        `json:"role" bson:"role" validate:"oneof=admin customer"`
	IsActive             bool          `json:"is_active" bson:"is_active"`
	ResetPasswordToken   string        `json:"-" bson:"reset_password_token,omitempty"`
	ResetPasswordExpires *time.Time    `json:"-" bson:"reset_password_expires,omitempty"`
	CreatedAt            time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) SetTimestamps() {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// RegisterRequest carries the self-registration fields. Role is deliberately
// absent: every new account is a customer, and admins are provisioned
// directly in the database.
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (req *RegisterRequest) ToUser(hashedPassword string) *User {
	user := &User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      RoleCustomer,
		IsActive:  true,
	}
	user.SetTimestamps()
	return user
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

package models

import "time"

// Roles
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// User is an account in the hosted users table. PasswordHash never leaves the
// backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the public projection of a user attached to other records.
type UserSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// SellerProfile is the business record of a seller. Sellers may only log in
// once IsApproved is set by an admin.
type SellerProfile struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	BusinessName string       `json:"business_name"`
	Description  string       `json:"description"`
	IsApproved   bool         `json:"is_approved"`
	CreatedAt    time.Time    `json:"created_at"`
	User         *UserSummary `json:"user,omitempty"`
}

// SignupRequest is the payload of POST /api/auth/signup.
type SignupRequest struct {
	Name                string `json:"name" binding:"required"`
	Email               string `json:"email" binding:"required,email"`
	Password            string `json:"password" binding:"required"`
	Role                string `json:"role" binding:"required,oneof=customer seller"`
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes a user's display name and email.
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest replaces the password after checking the current one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UpdateSellerProfileRequest edits the seller's business details.
type UpdateSellerProfileRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	Description  string `json:"description"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User    *User  `json:"user"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// SellerAccount is a seller's user record together with their business profile.
type SellerAccount struct {
	User    *User          `json:"user"`
	Profile *SellerProfile `json:"profile"`
}

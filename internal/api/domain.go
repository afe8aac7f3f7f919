package api

import (
	"time"
)

// Role values stored on the user record and carried in token claims.
const (
	RoleAdmin = 0
	RoleUser  = 1
)

// User represents the core user entity in the domain.
type User struct {
	ID           int64     `json:"id" example:"1"`                   // Store-assigned numeric identifier.
	Username     string    `json:"username" example:"johndoe"`       // Unique username used for login.
	Email        string    `json:"email" example:"john@example.com"` // Unique email address.
	PasswordHash string    `json:"-"`                                // bcrypt hash (never exposed).
	Role         int       `json:"role" example:"1"`                 // 0 = administrator, 1 = ordinary user.
	CreatedAt    time.Time `json:"created_at"`                       // Timestamp when the user was created, immutable.
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the public projection of a user record exposed in API
// responses. Fields are copied one by one (allow-list); password_hash can
// never leak through here.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      int       `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Projection builds the API-visible view of a user.
func (u *User) Projection() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Username string `json:"username" example:"johndoe"`     // Username to authenticate as.
	Password string `json:"password" example:"password123"` // Plaintext password.
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJI..."` // Signed JWT access token.
}

// RegisterRequest represents the expected JSON body for user registration.
// Role is always assigned server-side (new users are ordinary users).
type RegisterRequest struct {
	Username string `json:"username" example:"newuser"`          // Desired username. Must be unique.
	Email    string `json:"email" example:"newuser@example.com"` // Email address. Must be unique and valid.
	Password string `json:"password" example:"Str0ngP@ss!"`      // Desired password.
}

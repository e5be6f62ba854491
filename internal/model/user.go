package model

import "time"

// Roles are stored lowercase; comparisons elsewhere normalize before
// matching so cased input from old clients still resolves.
const (
	RoleCustomer   = "customer"
	RoleEntreprise = "entreprise"
	RoleAdmin      = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsValidated  bool      `json:"is_validated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccessClaims is the ephemeral identity derived from a verified access
// token. Never persisted.
type AccessClaims struct {
	UserID    int64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserView is the public shape of a user (no password hash).
type UserView struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsValidated bool      `json:"is_validated"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserWithProfile is the session view returned by signup/signin/me.
type UserWithProfile struct {
	UserView
	Profile *ProfileView `json:"profile,omitempty"`
}

func (u User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Role: u.Role, IsValidated: u.IsValidated, CreatedAt: u.CreatedAt}
}

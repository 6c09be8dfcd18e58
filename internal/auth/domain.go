package auth

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	AvatarURL    *string
	RefreshToken *string
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair bundles the credentials returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

package auth

// SignupRequest is the POST /auth/signup payload.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries a bare email address, used to re-send confirmations.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Confirmed bool    `json:"confirmed"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Confirmed: user.Confirmed,
	}
}

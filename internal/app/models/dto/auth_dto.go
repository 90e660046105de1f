package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	Message      string       `json:"message" example:"Login successful"`
}

// VerifyResponse is returned by the token verification endpoint
type VerifyResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message" example:"Token valid"`
}

// LogoutRequest carries the refresh token to revoke. Both key spellings are accepted.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
	Refresh      string `json:"refresh"`
}

// Token returns whichever key was supplied
func (r LogoutRequest) Token() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.Refresh
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents a freshly issued token pair
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int    `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresIn int    `json:"refreshTokenExpiresIn" example:"604800"`
}

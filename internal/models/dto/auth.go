package dto

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserSummary is the public view of a user returned by auth and profile
// endpoints. It never carries the password hash.
type UserSummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

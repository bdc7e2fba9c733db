package transport

type CreateUserRequest struct {
	FullName     string `json:"fullName"     validate:"required,notblank"`
	Username     string `json:"username"     validate:"required,notblank,min=3,max=32"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	PhoneNumber  string `json:"phoneNumber"`
	Password     string `json:"password"     validate:"required,min=6"`
	Role         string `json:"role"         validate:"omitempty,oneof=user admin"`
}

type PatchUserRequest struct {
	FullName     *string `json:"fullName"     validate:"omitempty,notblank"`
	Username     *string `json:"username"     validate:"omitempty,notblank,min=3,max=32"`
	EmailAddress *string `json:"emailAddress" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phoneNumber"`
	Password     *string `json:"password"     validate:"omitempty,min=6"`
	Role         *string `json:"role"         validate:"omitempty,oneof=user admin"`
}

// LoginRequest accepts the username or the email address as Login.
type LoginRequest struct {
	Login    string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DemoLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token for clients that do not keep cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

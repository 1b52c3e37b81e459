package domain

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"profile_pic"`
}

// Claim is the decoded identity handed over by the external identity provider.
type Claim struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"max=200"`
	AvatarURL string `json:"profile_pic"`
}

func (c Claim) CreateUserRequest() CreateUserRequest {
	return CreateUserRequest{
		Email:     c.Email,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
	}
}

package domain

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Sex   string `json:"sex,omitempty"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

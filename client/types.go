package client

// Developer is a registration as the API returns it.
type Developer struct {
	Id          string `json:"id"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

// DeveloperInput is the creation payload sent by the form.
type DeveloperInput struct {
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

// DeveloperPatch is a partial update; nil fields are not sent.
type DeveloperPatch struct {
	Nome        *string `json:"nome,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

package db

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const DeveloperIDPrefix = "dev_"

var (
	ErrNotFound    = errors.New("developer not found")
	ErrDuplicateID = errors.New("developer id already exists")
)

type Developer struct {
	Id          string `json:"id"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
}

// DeveloperPatch carries the fields of a partial update. Nil fields are left untouched.
type DeveloperPatch struct {
	Nome        *string `json:"nome,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
}

func (p DeveloperPatch) IsEmpty() bool {
	return p.Nome == nil && p.Email == nil && p.DateOfBirth == nil
}

// Apply merges the patch onto developer. The id is never changed.
func (p DeveloperPatch) Apply(developer Developer) Developer {
	if p.Nome != nil {
		developer.Nome = *p.Nome
	}
	if p.Email != nil {
		developer.Email = *p.Email
	}
	if p.DateOfBirth != nil {
		developer.DateOfBirth = *p.DateOfBirth
	}
	return developer
}

type IDFactory func() string

func NewDeveloperID() string {
	return DeveloperIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

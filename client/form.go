package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var formValidate = validator.New()

// Creator is the part of Client the form needs.
type Creator interface {
	Create(ctx context.Context, input DeveloperInput) (Developer, error)
}

// Form is the registration form. Its values survive failed submissions.
type Form struct {
	Nome        string
	Email       string
	DateOfBirth string
}

// Success is what the form shows after a registration went through. The
// values echo what the user typed, not a fresh read from the server.
type Success struct {
	Id          string
	Nome        string
	Email       string
	DateOfBirth string
	Age         int
}

// Validate returns the local problems that keep the form from being sent.
func (f Form) Validate() []string {
	var problems []string

	if strings.TrimSpace(f.Nome) == "" {
		problems = append(problems, "Informe seu nome.")
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		problems = append(problems, "Informe seu email.")
	case formValidate.Var(email, "email") != nil:
		problems = append(problems, "Email inválido.")
	}

	dateOfBirth := strings.TrimSpace(f.DateOfBirth)
	switch {
	case dateOfBirth == "":
		problems = append(problems, "Informe sua data de nascimento.")
	default:
		if _, err := time.Parse(dateLayout, dateOfBirth); err != nil {
			problems = append(problems, "Data de nascimento deve estar no formato AAAA-MM-DD.")
		}
	}

	return problems
}

func (f Form) Valid() bool {
	return len(f.Validate()) == 0
}

// InvalidFormError carries the local validation problems.
type InvalidFormError struct {
	Problems []string
}

func (e *InvalidFormError) Error() string {
	return "invalid form: " + strings.Join(e.Problems, " ")
}

// Submit validates locally and, only when valid, creates the developer.
func (f Form) Submit(ctx context.Context, creator Creator, now time.Time) (Success, error) {
	if problems := f.Validate(); len(problems) > 0 {
		return Success{}, &InvalidFormError{Problems: problems}
	}

	input := DeveloperInput{
		Nome:        strings.TrimSpace(f.Nome),
		Email:       strings.TrimSpace(f.Email),
		DateOfBirth: strings.TrimSpace(f.DateOfBirth),
	}

	developer, err := creator.Create(ctx, input)
	if err != nil {
		return Success{}, err
	}

	age, err := Age(input.DateOfBirth, now)
	if err != nil {
		return Success{}, err
	}

	return Success{
		Id:          developer.Id,
		Nome:        input.Nome,
		Email:       input.Email,
		DateOfBirth: input.DateOfBirth,
		Age:         age,
	}, nil
}

// Age returns the completed years between dateOfBirth (YYYY-MM-DD) and now.
func Age(dateOfBirth string, now time.Time) (int, error) {
	born, err := time.Parse(dateLayout, strings.TrimSpace(dateOfBirth))
	if err != nil {
		return 0, err
	}

	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, nil
}

// Message turns a submission or list error into the text shown to the user.
func Message(err error) string {
	var invalid *InvalidFormError
	var apiErr *APIError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		return strings.Join(invalid.Problems, " ")
	case errors.Is(err, ErrTimeout):
		return "O servidor demorou para responder. Tente novamente."
	case errors.Is(err, ErrNetwork):
		return "Não foi possível conectar ao servidor. Verifique sua conexão."
	case errors.As(err, &apiErr) && apiErr.NotFound():
		return "Cadastro não encontrado."
	case errors.As(err, &apiErr) && len(apiErr.Messages) > 0:
		return strings.Join(apiErr.Messages, " ")
	default:
		return "Erro ao processar a requisição."
	}
}

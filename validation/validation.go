// Package validation turns raw developer payloads into canonical values.
//
// Unknown fields are dropped. Any violated rule fails the whole payload with
// an *Error listing one message per offending field.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"devregistry/db"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dateLayout = "2006-01-02"

// dateLayouts need day precision; year-only, year-month and basic-format
// ISO 8601 dates are rejected.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// developerInput is the create payload. Pointers tell "absent" apart from "".
type developerInput struct {
	Nome        *string `json:"nome" validate:"required,min=1"`
	Email       *string `json:"email" validate:"required,email"`
	DateOfBirth *string `json:"dateOfBirth" validate:"required,isodate"`
}

type developerPatchInput struct {
	Nome        *string `json:"nome" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,isodate"`
}

var fieldNames = []string{"nome", "email", "dateOfBirth"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, ok := parseDate(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// ParseCreate validates a creation payload. Any id sent by the caller is dropped.
func ParseCreate(body []byte) (db.Developer, error) {
	fields, typeErrors, err := decodeStrings(body)
	if err != nil {
		return db.Developer{}, err
	}

	input := developerInput{
		Nome:        fields["nome"],
		Email:       fields["email"],
		DateOfBirth: fields["dateOfBirth"],
	}
	if err := check(input, typeErrors); err != nil {
		return db.Developer{}, err
	}

	dateOfBirth, _ := parseDate(*input.DateOfBirth)
	return db.Developer{
		Nome:        *input.Nome,
		Email:       *input.Email,
		DateOfBirth: dateOfBirth,
	}, nil
}

// ParsePatch validates a partial update payload. Only provided fields are constrained.
func ParsePatch(body []byte) (db.DeveloperPatch, error) {
	fields, typeErrors, err := decodeStrings(body)
	if err != nil {
		return db.DeveloperPatch{}, err
	}

	input := developerPatchInput{
		Nome:        fields["nome"],
		Email:       fields["email"],
		DateOfBirth: fields["dateOfBirth"],
	}
	if err := check(input, typeErrors); err != nil {
		return db.DeveloperPatch{}, err
	}

	patch := db.DeveloperPatch{Nome: input.Nome, Email: input.Email}
	if input.DateOfBirth != nil {
		dateOfBirth, _ := parseDate(*input.DateOfBirth)
		patch.DateOfBirth = &dateOfBirth
	}
	return patch, nil
}

// decodeStrings reads the known fields of a JSON object. Values that are not
// strings are reported per field; null counts as absent.
func decodeStrings(body []byte) (map[string]*string, map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, nil, &Error{Messages: []string{"request body must be a JSON object"}}
	}

	fields := map[string]*string{}
	typeErrors := map[string]string{}
	for _, name := range fieldNames {
		value, ok := raw[name]
		if !ok || value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			typeErrors[name] = fmt.Sprintf("%s must be a string", name)
			continue
		}
		s = strings.TrimSpace(s)
		fields[name] = &s
	}
	return fields, typeErrors, nil
}

func check(input any, typeErrors map[string]string) error {
	byField := map[string]string{}
	for name, msg := range typeErrors {
		byField[name] = msg
	}

	if err := validate.Struct(input); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate developer: %w", err)
		}
		for _, fe := range validationErrors {
			if _, taken := byField[fe.Field()]; taken {
				continue
			}
			byField[fe.Field()] = message(fe)
		}
	}

	if len(byField) == 0 {
		return nil
	}

	messages := make([]string, 0, len(byField))
	for _, name := range fieldNames {
		if msg, ok := byField[name]; ok {
			messages = append(messages, msg)
		}
	}
	return &Error{Messages: messages}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a valid ISO 8601 date string", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// parseDate accepts an ISO 8601 date or timestamp and returns it as YYYY-MM-DD.
func parseDate(value string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

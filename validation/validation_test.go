package validation

import (
	"errors"
	"testing"

	"devregistry/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreate_whenValid_shouldReturnCanonicalDeveloper(t *testing.T) {
	developer, err := ParseCreate([]byte(`{
		"id": "dev_forged",
		"nome": "  Ana ",
		"email": "ana@x.com",
		"dateOfBirth": "1990-01-01T10:00:00Z",
		"cpf": "123.456.789-00"
	}`))

	require.NoError(t, err)
	assert.Equal(t, db.Developer{Nome: "Ana", Email: "ana@x.com", DateOfBirth: "1990-01-01"}, developer)
}

func TestParseCreate_invalidPayloads(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		messages []string
	}{
		{
			name:     "missing nome",
			body:     `{"email":"ana@x.com","dateOfBirth":"1990-01-01"}`,
			messages: []string{"nome should not be empty"},
		},
		{
			name:     "blank nome",
			body:     `{"nome":"   ","email":"ana@x.com","dateOfBirth":"1990-01-01"}`,
			messages: []string{"nome should not be empty"},
		},
		{
			name:     "null nome",
			body:     `{"nome":null,"email":"ana@x.com","dateOfBirth":"1990-01-01"}`,
			messages: []string{"nome should not be empty"},
		},
		{
			name:     "nome not a string",
			body:     `{"nome":42,"email":"ana@x.com","dateOfBirth":"1990-01-01"}`,
			messages: []string{"nome must be a string"},
		},
		{
			name:     "malformed email",
			body:     `{"nome":"Ana","email":"ana-at-x","dateOfBirth":"1990-01-01"}`,
			messages: []string{"email must be an email"},
		},
		{
			name:     "invalid date",
			body:     `{"nome":"Ana","email":"ana@x.com","dateOfBirth":"1990-30-01"}`,
			messages: []string{"dateOfBirth must be a valid ISO 8601 date string"},
		},
		{
			name:     "year only",
			body:     `{"nome":"Ana","email":"ana@x.com","dateOfBirth":"1990"}`,
			messages: []string{"dateOfBirth must be a valid ISO 8601 date string"},
		},
		{
			name:     "year and month",
			body:     `{"nome":"Ana","email":"ana@x.com","dateOfBirth":"1990-01"}`,
			messages: []string{"dateOfBirth must be a valid ISO 8601 date string"},
		},
		{
			name:     "basic format date",
			body:     `{"nome":"Ana","email":"ana@x.com","dateOfBirth":"19900101"}`,
			messages: []string{"dateOfBirth must be a valid ISO 8601 date string"},
		},
		{
			name: "everything missing",
			body: `{}`,
			messages: []string{
				"nome should not be empty",
				"email should not be empty",
				"dateOfBirth should not be empty",
			},
		},
		{
			name:     "not an object",
			body:     `["Ana"]`,
			messages: []string{"request body must be a JSON object"},
		},
		{
			name:     "null body",
			body:     `null`,
			messages: []string{"request body must be a JSON object"},
		},
		{
			name:     "broken json",
			body:     `{"nome":`,
			messages: []string{"request body must be a JSON object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCreate([]byte(tt.body))

			var validationErr *Error
			require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
			assert.Equal(t, tt.messages, validationErr.Messages)
		})
	}
}

func TestParsePatch_onlyProvidedFieldsAreConstrained(t *testing.T) {
	patch, err := ParsePatch([]byte(`{"email":"novo@x.com","unknown":1}`))

	require.NoError(t, err)
	require.NotNil(t, patch.Email)
	assert.Equal(t, "novo@x.com", *patch.Email)
	assert.Nil(t, patch.Nome)
	assert.Nil(t, patch.DateOfBirth)
}

func TestParsePatch_shouldCanonicaliseDate(t *testing.T) {
	patch, err := ParsePatch([]byte(`{"dateOfBirth":"1991-02-03T00:00:00.000Z"}`))

	require.NoError(t, err)
	require.NotNil(t, patch.DateOfBirth)
	assert.Equal(t, "1991-02-03", *patch.DateOfBirth)
}

func TestParsePatch_emptyObjectIsValid(t *testing.T) {
	patch, err := ParsePatch([]byte(`{}`))

	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())
}

func TestParsePatch_invalidPayloads(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		messages []string
	}{
		{"empty nome", `{"nome":""}`, []string{"nome should not be empty"}},
		{"bad email", `{"email":"nope"}`, []string{"email must be an email"}},
		{"bad date", `{"dateOfBirth":"yesterday"}`, []string{"dateOfBirth must be a valid ISO 8601 date string"}},
		{"wrong type", `{"email":true,"nome":""}`, []string{"nome should not be empty", "email must be a string"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatch([]byte(tt.body))

			var validationErr *Error
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.messages, validationErr.Messages)
		})
	}
}

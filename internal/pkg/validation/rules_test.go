package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/flashclass/internal/pkg/apperrors"
)

type sample struct {
	Name     string `json:"name" validate:"notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"password"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  sample
		fields []string
	}{
		{"valid", sample{Name: "Jane", Email: "jane@example.com", Password: "secret123"}, nil},
		{"blank name", sample{Name: "   ", Email: "jane@example.com", Password: "secret123"}, []string{"name"}},
		{"bad email", sample{Name: "Jane", Email: "nope", Password: "secret123"}, []string{"email"}},
		{"password without digit", sample{Name: "Jane", Email: "jane@example.com", Password: "secretsecret"}, []string{"password"}},
		{"short password", sample{Name: "Jane", Email: "jane@example.com", Password: "abc1"}, []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			fields := apperrors.FieldErrors(err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required(map[string]string{"name": "Jane", "email": "j@x.com"}))

	err := Required(map[string]string{"name": " ", "email": ""})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	fields := apperrors.FieldErrors(err)
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "email is required", fields["email"])
}

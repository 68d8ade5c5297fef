package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name  string `json:"name" validate:"required,max=5"`
	Phone string `json:"phone" validate:"required,krphone"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(contactForm{Name: "Kim", Phone: "010-1234-5678"}))
	require.NoError(t, v.Struct(contactForm{Name: "Kim", Phone: "01012345678", Email: "a@b.co"}))

	err := v.Struct(contactForm{Name: "Kimberly", Phone: "02-123-4567", Email: "nope"})
	require.Error(t, err)

	fields := FromError(err)
	assert.Equal(t, FieldErrors{
		"name":  "must be at most 5",
		"phone": "must be a valid mobile number",
		"email": "must be a valid email address",
	}, fields)
}

func TestFirst(t *testing.T) {
	v := New()
	field, msg := First(v.Struct(contactForm{Phone: "010-1234-5678"}))
	assert.Equal(t, "name", field)
	assert.Equal(t, "is required", msg)

	field, msg = First(errors.New("boom"))
	assert.Empty(t, field)
	assert.Equal(t, "boom", msg)

	assert.Equal(t, FieldErrors{"_": "boom"}, FromError(errors.New("boom")))
}

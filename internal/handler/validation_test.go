package handler

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallRules(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, installRules(v, customRules))

	assert.NoError(t, v.Var("abcd1234", "password"))
	assert.Error(t, v.Var("abcdefgh", "password"))
	assert.Error(t, v.Var("12345678", "password"))

	err := v.Struct(registerRequest{Email: "x@example.com", Password: "onlyletters"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "password", verrs[0].Field())
}

func TestInstallRules_ReportsRegistrationFailure(t *testing.T) {
	err := installRules(validator.New(), map[string]validator.Func{"": validatePassword})

	assert.ErrorContains(t, err, "failed to register")
}

func TestRegisterValidators_IsIdempotent(t *testing.T) {
	assert.NotPanics(t, registerValidators)
	assert.NotPanics(t, registerValidators)
}

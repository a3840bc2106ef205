package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	pkgerr "github.com/shimms/shimms-backend/internal/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags on a DTO before any network call is made.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", pkgerr.ErrInvalidArgument, err.Error())
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email", pkgerr.ErrInvalidArgument)
	}
	return nil
}

// ValidatePassword enforces the minimum password policy. Kept deliberately
// simple: length only, no composition rules.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", pkgerr.ErrInvalidArgument)
	}
	return nil
}

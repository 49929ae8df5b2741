package service

import (
	"errors"
	"fmt"

	"reviewhub/internal/validator"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
)

func invalidInput(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, message)
}

// checkInput runs the struct's validate tags and reports the first broken
// rule as ErrInvalidInput.
func checkInput(input any) error {
	err := validator.Validate(input)
	if err == nil {
		return nil
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return invalidInput(verr.Error())
	}
	return err
}

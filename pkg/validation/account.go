package validation

import (
	"errors"

	goval "github.com/go-passwd/validator"

	utils "PetPal/pkg/utills"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

type RegisterInput struct {
	Email     string `json:"email" conform:"trim,lower" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" conform:"trim,upper" validate:"required,oneof=OWNER PROVIDER"`
	FirstName string `json:"firstName" conform:"trim" validate:"omitempty,max=80"`
	LastName  string `json:"lastName" conform:"trim" validate:"omitempty,max=80"`
}

type LoginInput struct {
	Email    string `json:"email" conform:"trim,lower" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var passwordValidator = goval.New(
	goval.MinLength(MinPasswordLength, errors.New("password must be at least 8 characters")),
	goval.MaxLength(MaxPasswordLength, errors.New("password must be at most 72 characters")),
)

// Password checks length and requires at least one letter and one number.
func Password(pw string) error {
	if err := passwordValidator.Validate(pw); err != nil {
		return &Error{Field: "password", Message: err.Error()}
	}
	if !utils.HasLetter(pw) || !utils.HasNumber(pw) {
		return &Error{Field: "password", Message: "password must contain at least one letter and one number"}
	}
	return nil
}

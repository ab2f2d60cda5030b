// Package validator wires go-playground/validator into Echo's request binding.
package validator

import (
	"pentrack/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// echoValidator adapts go-playground/validator to echo.Validator.
type echoValidator struct {
	validate *playground.Validate
}

// New builds the validator used by the Echo server.
func New() echo.Validator {
	return &echoValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Struct tag failures surface as the
// domain's validation error so the error middleware renders them uniformly.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return errors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

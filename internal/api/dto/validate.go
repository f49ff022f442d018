package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/pispas/incident-service/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and converts failures to the
// application error taxonomy.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	details := map[string]any{}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("invalid payload", details)
}

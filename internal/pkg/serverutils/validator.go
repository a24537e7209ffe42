package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"ai-chatbot-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks the validate tags of req and reports the first failing field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return apperror.Validation(fmt.Sprintf("%s is required", field))
		case "email":
			return apperror.Validation(fmt.Sprintf("%s must be a valid email", field))
		case "min":
			return apperror.Validation(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			return apperror.Validation(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			return apperror.Validation(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			return apperror.Validation(fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperror.Validation(err.Error())
}

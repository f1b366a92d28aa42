package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on the payload and flattens the
// first failure into a readable message wrapped as ErrValidation.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", strings.ToLower(fe.Field()))
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters long", strings.ToLower(fe.Field()), fe.Param())
		case "max":
			msg = fmt.Sprintf("%s can't exceed %s characters", strings.ToLower(fe.Field()), fe.Param())
		default:
			msg = fmt.Sprintf("validation failed on field %s", strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

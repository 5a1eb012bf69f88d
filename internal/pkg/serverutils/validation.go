package serverutils

import (
	"errors"
	"reflect"
	"strings"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names, not Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct reports the first failing field: a missing required field
// as MISSING_FIELD, anything else as INVALID_REQUEST.
func ValidateStruct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation(constant.ErrCodeInvalidRequest, err.Error())
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperror.MissingField(fe.Field())
	}
	return apperror.Validation(constant.ErrCodeInvalidRequest, "invalid value for field: "+fe.Field())
}

// ParseAndValidate decodes the JSON body into req and validates it.
func ParseAndValidate(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation(constant.ErrCodeInvalidRequest, "request body must be valid JSON")
	}
	return ValidateStruct(req)
}

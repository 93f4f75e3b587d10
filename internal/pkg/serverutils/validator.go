package serverutils

import (
	"fmt"

	"github.com/on-par/vemorable-sub000/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and maps failures into the app's
// validation error type so the error handler renders them uniformly.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return apperr.NewValidation(
				"field %s failed on the %s rule",
				first.Field(), first.Tag(),
			)
		}
		return apperr.NewValidation("%s", fmt.Sprint(err))
	}
	return nil
}

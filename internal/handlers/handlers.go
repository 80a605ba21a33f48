package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/example/bazaar/internal/apperr"
)

var validate = validator.New()

// validateStruct runs validator tags on a request DTO and converts
// failures into the boundary's validation error shape.
func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var fields []validator.FieldError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields = verrs
		}
		if len(fields) > 0 {
			return apperr.New(apperr.Validation, "invalid value for field "+fields[0].Field())
		}
		return apperr.New(apperr.Validation, "invalid request")
	}
	return nil
}

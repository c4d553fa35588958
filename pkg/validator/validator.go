// Package validator wraps go-playground/validator for the field-presence
// checks the client performs before a request leaves the process.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	errx "github.com/triptrop/client/internal/core/error"
)

// Validator checks structs against their validate tags and reports failures
// using the JSON field names the server knows them by.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and returns a KindValidation *errx.Error that lists the
// offending fields.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.New(errx.KindValidation, 0, errx.ValidationErrorMessage, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return errx.New(errx.KindValidation, 0, "invalid fields: "+strings.Join(fields, ", "), err)
}

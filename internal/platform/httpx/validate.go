package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sportsreg/sportsreg/internal/shared"
)

// Validate runs struct validation and folds the result into the domain error
// taxonomy: absent required fields become ErrMissingFields, anything else
// ErrValidation.
func Validate(v *validator.Validate, dto any) error {
	err := v.Struct(dto)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	var missing, invalid []string
	for _, fe := range fieldErrs {
		name := jsonFieldName(fe)
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		invalid = append(invalid, name+" ("+fe.Tag()+")")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", shared.ErrMissingFields, strings.Join(missing, ", "))
	}
	sort.Strings(invalid)
	return fmt.Errorf("%w: %s", shared.ErrValidation, strings.Join(invalid, ", "))
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func jsonFieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yashrajoria/luxe-storefront/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeShipping trims surrounding whitespace from every field.
func NormalizeShipping(info models.ShippingInfo) models.ShippingInfo {
	return models.ShippingInfo{
		FullName: strings.TrimSpace(info.FullName),
		Email:    strings.TrimSpace(info.Email),
		Address:  strings.TrimSpace(info.Address),
		City:     strings.TrimSpace(info.City),
		ZipCode:  strings.TrimSpace(info.ZipCode),
	}
}

// ValidateShipping checks the fields required to leave the shipping step. The error wraps
// ErrShippingIncomplete and names the missing fields.
func ValidateShipping(info models.ShippingInfo) error {
	err := validate.Struct(info)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return fmt.Errorf("%w: missing %s", ErrShippingIncomplete, strings.Join(missing, ", "))
}

package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// Prices must fit a decimal(12,2) column.
const priceScale = 2

var priceCeiling = decimal.New(1, 10)

// listingValidator checks ports.ListingInput before anything is persisted.
type listingValidator struct {
	v *validator.Validate
}

func newListingValidator() *listingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterStructValidation(validatePrice, ports.ListingInput{})

	return &listingValidator{v: v}
}

func validatePrice(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(ports.ListingInput)
	if !ok || in.Price.IsNegative() {
		return
	}
	switch {
	case !in.Price.Equal(in.Price.Truncate(priceScale)):
		sl.ReportError(in.Price, "price", "Price", "decimals", fmt.Sprint(priceScale))
	case in.Price.GreaterThanOrEqual(priceCeiling):
		sl.ReportError(in.Price, "price", "Price", "lt", priceCeiling.String())
	}
}

// Validate returns a *domain.ValidationError for the first failing field.
func (lv *listingValidator) Validate(in any) error {
	err := lv.v.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	return domain.NewValidationError(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "decimals":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

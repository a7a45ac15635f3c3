// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strings"

	"finanzas/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("movement_kind", validateMovementKind)
		_ = v.RegisterValidation("reserve_kind", validateReserveKind)
		_ = v.RegisterValidation("reserve_filter", validateReserveFilter)
		_ = v.RegisterValidation("reserve_movement_kind", validateReserveMovementKind)
	}
}

// decimalValue lets numeric tags such as gt=0 and gte=0 apply to decimal fields.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateAccountType(fl validator.FieldLevel) bool {
	_, ok := models.ParseAccountType(fl.Field().String())
	return ok
}

func validateMovementKind(fl validator.FieldLevel) bool {
	_, ok := models.ParseMovementKind(fl.Field().String())
	return ok
}

func validateReserveKind(fl validator.FieldLevel) bool {
	_, ok := models.ParseReserveKind(fl.Field().String())
	return ok
}

// validateReserveFilter accepts any reserve kind or the ALL token.
func validateReserveFilter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return true
	}
	_, ok := models.ParseReserveKind(s)
	return ok
}

func validateReserveMovementKind(fl validator.FieldLevel) bool {
	_, ok := models.ParseReserveMovementKind(fl.Field().String())
	return ok
}

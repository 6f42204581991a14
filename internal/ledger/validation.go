package ledger

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

var fieldMessages = map[string]string{
	"name":         "Name is required.",
	"purchase":     "Purchase must be a number.",
	"return":       "Return must be a number.",
	"rate_per_pc":  "Rate/PCS must be a number.",
	"vc":           "VC must be a number.",
	"previous_due": "Previous Due must be a number.",
	"date":         "Date must be in YYYY-MM-DD format.",
}

// ValidationError carries per-field messages for a rejected entry.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "ledger: invalid fields " + strings.Join(keys, ", ")
}

// FieldMessages exposes the field map to the HTTP layer.
func (e *ValidationError) FieldMessages() map[string]string {
	return e.Fields
}

func (e *ValidationError) Unwrap() error {
	return httpx.ErrValidation
}

// NewValidator returns a validator aware of Number fields and json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if n, ok := field.Interface().(Number); ok {
			return n.Raw()
		}
		return nil
	}, Number{})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	return v
}

func validateUpsert(v *validator.Validate, req UpsertRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

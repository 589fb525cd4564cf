// Package validate checks RPC request messages against their struct tags.
//
// Besides the built-in go-playground rules it knows:
//
//	amount  a decimal string with at most two fractional digits, > 0
//	money   like amount, but zero is allowed
//	cycle   weekly, monthly, quarterly or yearly
//	date    a YYYY-MM-DD calendar date
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("amount", validateAmount)
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("cycle", validateCycle)
		_ = v.RegisterValidation("date", validateDate)
		instance = v
	})
	return instance
}

// Struct validates s and flattens any failures into one readable error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "amount":
		return fmt.Sprintf("%s must be a positive amount with at most two decimals", field)
	case "money":
		return fmt.Sprintf("%s must be an amount with at most two decimals", field)
	case "cycle":
		return fmt.Sprintf("%s must be weekly, monthly, quarterly or yearly", field)
	case "date":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max", "min":
		return fmt.Sprintf("%s must have %s %s", field, fe.Tag(), fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// fieldPath turns "CreateExpenseRequest.ExpenseInput.splits[0].amount" into
// "splits[0].amount": the root type and embedded structs are dropped.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := parts[:0]
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validateAmount(fl validator.FieldLevel) bool {
	a, err := money.Parse(fl.Field().String())
	return err == nil && a > 0
}

func validateMoney(fl validator.FieldLevel) bool {
	a, err := money.Parse(fl.Field().String())
	return err == nil && a >= 0
}

func validateCycle(fl validator.FieldLevel) bool {
	_, err := models.ParseCycle(fl.Field().String())
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

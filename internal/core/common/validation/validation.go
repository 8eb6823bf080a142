// Package validation collects field errors for request DTOs so a client sees
// every problem in one response.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

type rule struct {
	ok      func(interface{}) bool
	message string
	code    errors.ErrorCode
}

type FieldValidator struct {
	FieldName string
	Value     interface{}
	rules     []rule
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) add(code errors.ErrorCode, ok func(interface{}) bool, format string, args ...interface{}) *FieldValidator {
	fv.rules = append(fv.rules, rule{
		ok:      ok,
		message: fmt.Sprintf("%s "+format, append([]interface{}{fv.FieldName}, args...)...),
		code:    code,
	})
	return fv
}

// Required rejects empty strings, nil string pointers and zero ids.
func (fv *FieldValidator) Required() *FieldValidator {
	return fv.add(errors.ErrCodeValidationFailed, func(value interface{}) bool {
		switch v := value.(type) {
		case string:
			return v != ""
		case *string:
			return v != nil && *v != ""
		case int64:
			return v != 0
		}
		return true
	}, "is required")
}

func (fv *FieldValidator) MinInt(min int64, code errors.ErrorCode) *FieldValidator {
	return fv.add(code, func(value interface{}) bool {
		v, isInt := value.(int64)
		return !isInt || v >= min
	}, "must be at least %d", min)
}

func (fv *FieldValidator) MaxInt(max int64, code errors.ErrorCode) *FieldValidator {
	return fv.add(code, func(value interface{}) bool {
		v, isInt := value.(int64)
		return !isInt || v <= max
	}, "must not exceed %d", max)
}

// NonNegative rejects negative decimal amounts.
func (fv *FieldValidator) NonNegative(code errors.ErrorCode) *FieldValidator {
	return fv.add(code, func(value interface{}) bool {
		v, isDecimal := value.(decimal.Decimal)
		return !isDecimal || !v.IsNegative()
	}, "must not be negative")
}

// MaxLength counts characters, not bytes; bank descriptions are often non-ASCII.
func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	return fv.add(errors.ErrCodeValidationFailed, func(value interface{}) bool {
		v, isString := value.(string)
		return !isString || utf8.RuneCountInString(v) <= max
	}, "must not exceed %d characters", max)
}

// ISODate requires a YYYY-MM-DD string when one is given.
func (fv *FieldValidator) ISODate() *FieldValidator {
	return fv.add(errors.ErrCodeInvalidDate, func(value interface{}) bool {
		v, isString := value.(string)
		if !isString || v == "" {
			return true
		}
		_, err := time.Parse(period.DateLayout, v)
		return err == nil
	}, "must be a date formatted as YYYY-MM-DD")
}

// Period requires a budget period label in any letter case.
func (fv *FieldValidator) Period() *FieldValidator {
	labels := make([]string, len(period.All))
	for i, p := range period.All {
		labels[i] = string(p)
	}
	return fv.OneOf(errors.ErrCodeInvalidPeriod, labels...)
}

// OneOf compares case-insensitively; empty values are left to Required.
func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	return fv.add(code, func(value interface{}) bool {
		v, isString := value.(string)
		if !isString || v == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				return true
			}
		}
		return false
	}, "must be one of %s", strings.Join(allowed, ", "))
}

// Validate reports the first failing rule of every field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var failed []errors.ValidationError
	for _, f := range v.fields {
		for _, r := range f.rules {
			if !r.ok(f.Value) {
				failed = append(failed, errors.ValidationError{Field: f.FieldName, Message: r.message, Code: string(r.code)})
				break
			}
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.NewValidationErrors("Validation failed", errors.ErrCodeValidationFailed, failed)
}

// ParsePeriod wraps period.Parse in a validation error.
func ParsePeriod(field, value string) (period.Period, *errors.AppError) {
	p, err := period.Parse(value)
	if err != nil {
		return "", errors.NewValidationFieldError(field, fmt.Sprintf("%s must be one of WEEKLY, FORTNIGHTLY, MONTHLY, QUARTERLY, YEARLY", field), errors.ErrCodeInvalidPeriod)
	}
	return p, nil
}

// ParseDate parses an optional ISO date; empty input yields nil.
func ParseDate(field, value string, loc *time.Location) (*time.Time, *errors.AppError) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := period.ParseDate(value, loc)
	if err != nil {
		return nil, errors.NewValidationFieldError(field, fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field), errors.ErrCodeInvalidDate)
	}
	return &t, nil
}

// ValidateRegex checks that pattern compiles as a case-insensitive expression.
func ValidateRegex(field, pattern string) *errors.AppError {
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return errors.NewValidationFieldError(field, fmt.Sprintf("%s is not a valid regular expression: %v", field, err), errors.ErrCodeInvalidPattern)
	}
	return nil
}

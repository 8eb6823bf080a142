package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDescription ErrorCode = "INVALID_DESCRIPTION"
	ErrCodeInvalidCategory    ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidDate        ErrorCode = "INVALID_DATE"
	ErrCodeInvalidPeriod      ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidMatchType   ErrorCode = "INVALID_MATCH_TYPE"
	ErrCodeInvalidPattern     ErrorCode = "INVALID_PATTERN"
	ErrCodeInvalidHierarchy   ErrorCode = "INVALID_CATEGORY_HIERARCHY"
	ErrCodeInvalidIncomeSrc   ErrorCode = "INVALID_INCOME_SOURCE"
	ErrCodeInvalidPayDay      ErrorCode = "INVALID_PAY_DAY"
	ErrCodeMissingColumn      ErrorCode = "MISSING_CSV_COLUMN"
	ErrCodeInvalidCSV         ErrorCode = "INVALID_CSV"

	ErrCodeCategoryNotFound     ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeRuleNotFound         ErrorCode = "RULE_NOT_FOUND"
	ErrCodeExpenseNotFound      ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeIncomeNotFound       ErrorCode = "INCOME_NOT_FOUND"
	ErrCodeIncomeSourceNotFound ErrorCode = "INCOME_SOURCE_NOT_FOUND"

	ErrCodeCategoryInUse     ErrorCode = "CATEGORY_IN_USE"
	ErrCodeCategoryExists    ErrorCode = "CATEGORY_EXISTS"
	ErrCodeIncomeSourceInUse ErrorCode = "INCOME_SOURCE_IN_USE"
	ErrCodeIncomeSourceExist ErrorCode = "INCOME_SOURCE_EXISTS"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the error every service returns to transport. Its JSON form
// is the body clients see under "error".
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeInternal:     http.StatusInternalServerError,
}

func newAppError(t ErrorType, code ErrorCode, message string) *AppError {
	return &AppError{Type: t, Code: code, Message: message, StatusCode: statusByType[t]}
}

// Error prefers the first field message so CLI output names the bad field.
func (e *AppError) Error() string {
	if v, ok := e.Details.(ValidationErrors); ok && len(v.Errors) > 0 {
		msgs := make([]string, len(v.Errors))
		for i, fe := range v.Errors {
			msgs[i] = fe.Message
		}
		return strings.Join(msgs, "; ")
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, message)
}

// NewValidationErrors reports several field problems at once.
func NewValidationErrors(message string, code ErrorCode, fields []ValidationError) *AppError {
	e := newAppError(ErrorTypeValidation, code, message)
	e.Details = ValidationErrors{Errors: fields}
	return e
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationErrors("Validation failed", ErrCodeValidationFailed, []ValidationError{
		{Field: field, Message: message, Code: string(code)},
	})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, message)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, message)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, message)
}

func NewInternalError(message string, cause error) *AppError {
	e := newAppError(ErrorTypeInternal, ErrCodeInternal, message)
	e.Cause = cause
	return e
}

var (
	ErrCategoryNotFound     = NewNotFoundError("Category not found", ErrCodeCategoryNotFound)
	ErrRuleNotFound         = NewNotFoundError("Categorization rule not found", ErrCodeRuleNotFound)
	ErrExpenseNotFound      = NewNotFoundError("Expense not found", ErrCodeExpenseNotFound)
	ErrIncomeNotFound       = NewNotFoundError("Income not found", ErrCodeIncomeNotFound)
	ErrIncomeSourceNotFound = NewNotFoundError("Income source not found", ErrCodeIncomeSourceNotFound)

	ErrCategoryInUse     = NewConflictError("Category has ledger entries and cannot be deleted", ErrCodeCategoryInUse)
	ErrCategoryHasChild  = NewConflictError("Category has child categories and cannot be deleted", ErrCodeCategoryInUse)
	ErrIncomeSourceInUse = NewConflictError("Income source has income entries and cannot be deleted", ErrCodeIncomeSourceInUse)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found AppError.
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

func isType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

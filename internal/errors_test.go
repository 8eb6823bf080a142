package internal_test

import (
	"encoding/json"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/budget-tracker/internal"
)

var _ = Describe("AppError", func() {
	It("should map error types to status codes", func() {
		Expect(internal.NewValidationError("bad", internal.ErrCodeInvalidDate).StatusCode).To(Equal(http.StatusBadRequest))
		Expect(internal.ErrCategoryNotFound.StatusCode).To(Equal(http.StatusNotFound))
		Expect(internal.ErrCategoryInUse.StatusCode).To(Equal(http.StatusConflict))
		Expect(internal.NewUnauthorizedError("no", internal.ErrCodeInvalidToken).StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(internal.NewInternalError("boom", nil).StatusCode).To(Equal(http.StatusInternalServerError))
	})

	It("should join field messages in Error", func() {
		err := internal.NewValidationErrors("Validation failed", internal.ErrCodeValidationFailed, []internal.ValidationError{
			{Field: "date", Message: "date is required"},
			{Field: "amount", Message: "amount must not be negative"},
		})
		Expect(err.Error()).To(Equal("date is required; amount must not be negative"))
		Expect(internal.IsValidation(err)).To(BeTrue())
		Expect(internal.IsNotFound(err)).To(BeFalse())
	})

	It("should find wrapped errors and expose causes", func() {
		cause := fmt.Errorf("connection reset")
		wrapped := fmt.Errorf("loading ledger: %w", internal.NewInternalError("failed to list expenses", cause))

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Error()).To(Equal("failed to list expenses: connection reset"))
		Expect(appErr.Unwrap()).To(Equal(cause))
		Expect(internal.IsNotFound(fmt.Errorf("x: %w", internal.ErrExpenseNotFound))).To(BeTrue())
	})

	It("should render the client body without the cause", func() {
		status, body := internal.NewInternalError("failed to import expenses", fmt.Errorf("secret dsn")).ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"failed to import expenses"}}`))
	})
})

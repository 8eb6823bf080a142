package validation_test

import (
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/common/validation"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("should report one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("description", "").Required().MaxLength(5)
		v.Field("amount", decimal.NewFromInt(-3)).NonNegative(errors.ErrCodeInvalidAmount)
		v.Field("period", "daily").Required().Period()
		v.Field("pay_day", int64(32)).MinInt(1, errors.ErrCodeInvalidPayDay).MaxInt(31, errors.ErrCodeInvalidPayDay)
		v.Field("date", "2026-13-01").ISODate()
		v.Field("notes", "fine").MaxLength(10)

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())
		fields := appErr.Details.(errors.ValidationErrors).Errors
		Expect(fields).To(HaveLen(5))
		Expect(fields[0]).To(Equal(errors.ValidationError{Field: "description", Message: "description is required", Code: "VALIDATION_FAILED"}))
		Expect(fields[1].Code).To(Equal("INVALID_AMOUNT"))
		Expect(fields[2].Message).To(Equal("period must be one of WEEKLY, FORTNIGHTLY, MONTHLY, QUARTERLY, YEARLY"))
		Expect(fields[3].Message).To(Equal("pay_day must not exceed 31"))
		Expect(fields[4].Code).To(Equal("INVALID_DATE"))
	})

	It("should accept periods in any case and count characters not bytes", func() {
		v := validation.NewValidator()
		v.Field("period", "Fortnightly").Period()
		v.Field("description", strings.Repeat("é", 10)).MaxLength(10)
		Expect(v.Validate()).To(BeNil())
	})

	It("should parse optional dates and periods", func() {
		d, appErr := validation.ParseDate("date", "", time.UTC)
		Expect(appErr).To(BeNil())
		Expect(d).To(BeNil())

		d, appErr = validation.ParseDate("date", "2026-02-28", time.UTC)
		Expect(appErr).To(BeNil())
		Expect(d.Day()).To(Equal(28))

		_, appErr = validation.ParseDate("date", "28/02/2026", time.UTC)
		Expect(appErr).NotTo(BeNil())

		p, appErr := validation.ParsePeriod("period", "quarterly")
		Expect(appErr).To(BeNil())
		Expect(p).To(Equal(period.Quarterly))
	})

	It("should reject regex patterns that do not compile", func() {
		Expect(validation.ValidateRegex("pattern", "^uber( eats)?")).To(BeNil())
		Expect(validation.ValidateRegex("pattern", "([a-z")).NotTo(BeNil())
	})
})

package expense_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	appErrors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/expense"
)

var _ = Describe("Statement parsing", func() {
	parse := func(csv string, opts expense.ParseOptions) *expense.ParsedStatement {
		if opts.Location == nil {
			opts.Location = time.UTC
		}
		parsed, err := expense.ParseStatement(strings.NewReader(csv), opts)
		Expect(err).NotTo(HaveOccurred())
		return parsed
	}

	Describe("DetectFormat", func() {
		DescribeTable("header detection",
			func(headers []string, want string) {
				Expect(expense.DetectFormat(headers)).To(Equal(want))
			},
			Entry("amex card member column", []string{"Date", "Description", "Card Member", "Amount"}, "amex"),
			Entry("pocketbook debit column", []string{"Transaction Date", "Details", "Debit", "Credit"}, "pocketbook"),
			Entry("plain bank export", []string{"Date", "Amount", "Description", "Balance"}, "commbank"),
			Entry("generic with category", []string{"date", "amount", "description", "category"}, expense.FormatGeneric),
			Entry("generic with merchant", []string{"date", "amount", "description", "merchant"}, expense.FormatGeneric),
		)
	})

	Describe("ParseStatement", func() {
		It("should parse the generic format with quoted commas", func() {
			parsed := parse("date,amount,description,category,merchant\n"+
				"2026-03-01,12.50,\"Coffee, large\",Dining,Cafe Roma\n"+
				"2026-03-02,\"$1,200.00\",Rent,Housing,\n", expense.ParseOptions{})

			Expect(parsed.Format).To(Equal(expense.FormatGeneric))
			Expect(parsed.Errors).To(BeEmpty())
			Expect(parsed.Rows).To(HaveLen(2))

			first := parsed.Rows[0]
			Expect(first.Line).To(Equal(2))
			Expect(first.Description).To(Equal("Coffee, large"))
			Expect(first.Category).To(Equal("Dining"))
			Expect(first.Merchant).To(Equal("Cafe Roma"))
			Expect(first.Amount.Equal(decimal.RequireFromString("12.50"))).To(BeTrue())

			Expect(parsed.Rows[1].Amount.Equal(decimal.NewFromInt(1200))).To(BeTrue())
			Expect(parsed.Rows[1].RawAmount).To(Equal("$1,200.00"))
		})

		It("should read day-first dates and make amounts positive for bank presets", func() {
			parsed := parse("Date,Amount,Description,Balance\n"+
				"05/03/2026,-45.20,WOOLWORTHS 123,1000.00\n", expense.ParseOptions{})

			Expect(parsed.Format).To(Equal("commbank"))
			Expect(parsed.Rows).To(HaveLen(1))
			row := parsed.Rows[0]
			Expect(row.Date).To(Equal(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
			Expect(row.Amount.Equal(decimal.RequireFromString("45.20"))).To(BeTrue())
			Expect(row.RawAmount).To(Equal("-45.20"))
		})

		It("should mark amounts of the preset's credit sign as credits", func() {
			amex := parse("Date,Description,Card Member,Amount\n"+
				"01/03/2026,MYER SYDNEY,J SMITH,120.00\n"+
				"02/03/2026,PAYMENT RECEIVED - THANK YOU,J SMITH,-1000.00\n", expense.ParseOptions{})
			Expect(amex.Format).To(Equal("amex"))
			Expect(amex.Rows).To(HaveLen(2))
			Expect(amex.Rows[0].IsCredit).To(BeFalse())
			Expect(amex.Rows[1].IsCredit).To(BeTrue())
			Expect(amex.Rows[1].Amount.Equal(decimal.NewFromInt(1000))).To(BeTrue())

			bank := parse("Date,Amount,Description,Balance\n"+
				"05/03/2026,-45.20,WOOLWORTHS 123,1000.00\n"+
				"06/03/2026,2500.00,SALARY ACME,3454.80\n"+
				"07/03/2026,0.00,CARD CHECK,3454.80\n", expense.ParseOptions{})
			Expect(bank.Format).To(Equal("commbank"))
			Expect(bank.Rows).To(HaveLen(3))
			Expect(bank.Rows[0].IsCredit).To(BeFalse())
			Expect(bank.Rows[1].IsCredit).To(BeTrue())
			Expect(bank.Rows[2].IsCredit).To(BeTrue())
		})

		It("should split pocketbook debits and credits", func() {
			parsed := parse("Transaction Date,Details,Debit,Credit,Category,Subcategory\n"+
				"01 Mar 2026,Coles,30.00,,Food,Groceries\n"+
				"02 Mar 2026,Salary,,2500.00,Income,\n", expense.ParseOptions{})

			Expect(parsed.Format).To(Equal("pocketbook"))
			Expect(parsed.Rows).To(HaveLen(2))
			Expect(parsed.Rows[0].IsCredit).To(BeFalse())
			Expect(parsed.Rows[0].Subcategory).To(Equal("Groceries"))
			Expect(parsed.Rows[1].IsCredit).To(BeTrue())
			Expect(parsed.Rows[1].Amount.Equal(decimal.NewFromInt(2500))).To(BeTrue())
		})

		It("should honour a column override and a BOM on the header", func() {
			parsed := parse("\ufeffWhen,Value,Memo\n2026-03-09,7,Parking\n", expense.ParseOptions{
				Format:  expense.FormatGeneric,
				Columns: &expense.ColumnMapping{Date: "When", Amount: "Value", Description: "Memo"},
			})
			Expect(parsed.Rows).To(HaveLen(1))
			Expect(parsed.Rows[0].Description).To(Equal("Parking"))
		})

		It("should collect bad rows and keep going", func() {
			parsed := parse("date,amount,description\n"+
				"not-a-date,5,Bad date\n"+
				"\n"+
				"2026-03-02,abc,Bad amount\n"+
				"2026-03-03,8,Good\n", expense.ParseOptions{})

			Expect(parsed.Rows).To(HaveLen(1))
			Expect(parsed.Rows[0].Description).To(Equal("Good"))
			Expect(parsed.Errors).To(HaveLen(2))
			Expect(parsed.Errors[0].Line).To(Equal(2))
		})

		It("should fail when required columns are missing", func() {
			_, err := expense.ParseStatement(strings.NewReader("date,notes\n2026-03-01,x\n"), expense.ParseOptions{Format: expense.FormatGeneric})
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(appErrors.ErrCodeMissingColumn))
		})

		It("should reject empty input and unknown formats", func() {
			_, err := expense.ParseStatement(strings.NewReader(""), expense.ParseOptions{})
			Expect(err).To(HaveOccurred())
			_, err = expense.ParseStatement(strings.NewReader("date,amount,description\n"), expense.ParseOptions{Format: "westpac"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseStatementDate", func() {
		DescribeTable("fallback layouts",
			func(raw string, want time.Time) {
				got, err := expense.ParseStatementDate(raw, "", time.UTC)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("ISO", "2026-03-05", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
			Entry("day first slashes", "05/03/2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
			Entry("day first dashes", "05-03-2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
			Entry("month name", "5 Mar 2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
		)

		It("should reject garbage", func() {
			_, err := expense.ParseStatementDate("yesterday", "", time.UTC)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("NaturalKey", func() {
		It("should only use the first 50 characters of the description", func() {
			long := strings.Repeat("é", 60)
			key := expense.NaturalKey("05/03/2026", "-45.20", long)
			Expect(key).To(Equal("05/03/2026|-45.20|" + strings.Repeat("é", 50)))
			Expect(expense.NaturalKey("05/03/2026", "-45.20", long+"tail")).To(Equal(key))
		})
	})
})

package expense_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/core/events"
	"github.com/frahmantamala/budget-tracker/internal/expense"
)

const statement = `date,amount,description,category
2026-03-01,45.20,WOOLWORTHS 123 SYDNEY,
2026-03-02,12.00,Corner cafe,
2026-03-03,30.00,Opal,Transport
2026-03-04,500.00,To savings,Transfer
2026-03-05,9.99,Unknown shop,
2026-03-01,45.20,WOOLWORTHS 123 SYDNEY,
`

var _ = Describe("Importer", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
		f.category("Food", "", 100)
		f.category("Groceries", "Food", 600)
		f.category("Dining", "Food", 150)
		f.category("Transport", "", 200)
		f.category("Transfer", "", 0)
		f.rule("woolworths", "CONTAINS", "Groceries", 10)
	})

	run := func(req expense.ImportRequest) *expense.ImportResult {
		result, err := f.importer.Import(ctx, strings.NewReader(statement), req)
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("should resolve categories by column, mapping and rules", func() {
		result := run(expense.ImportRequest{
			CategoryMapping: map[string]string{"corner cafe": "Dining"},
		})

		Expect(result.Format).To(Equal(expense.FormatGeneric))
		Expect(result.TotalRows).To(Equal(6))
		Expect(result.Imported).To(Equal(3))
		Expect(result.Excluded).To(Equal(1))
		Expect(result.Duplicates).To(Equal(1))
		Expect(result.Uncategorized).To(HaveLen(1))
		Expect(result.Uncategorized[0].Description).To(Equal("Unknown shop"))
		Expect(result.ImportedTotal).To(Equal(87.2))

		resolved := map[string]string{}
		for _, row := range result.Rows {
			resolved[row.Description] = row.Category + "/" + row.ResolvedBy
		}
		Expect(resolved).To(Equal(map[string]string{
			"WOOLWORTHS 123 SYDNEY": "Groceries/" + expense.ResolvedByRule,
			"Corner cafe":           "Dining/" + expense.ResolvedByMapping,
			"Opal":                  "Transport/" + expense.ResolvedByColumn,
		}))

		Expect(f.count()).To(Equal(int64(3)))
		Expect(f.publisher.Types()).To(ContainElement(events.EventTypeExpensesImported))
	})

	It("should import nothing the second time", func() {
		first := run(expense.ImportRequest{})
		Expect(first.Imported).To(Equal(2))

		second := run(expense.ImportRequest{})
		Expect(second.Imported).To(BeZero())
		Expect(second.Duplicates).To(Equal(3))
		Expect(second.Rows).To(BeEmpty())
		Expect(f.count()).To(Equal(int64(2)))
	})

	It("should store imported rows as bank imports", func() {
		run(expense.ImportRequest{})

		list, err := f.service.ListExpenses(ctx, expense.ListFilter{Source: "bank_import"})
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		for _, e := range list {
			Expect(e.BankReference).NotTo(BeNil())
		}
	})

	It("should report without writing on a dry run", func() {
		result := run(expense.ImportRequest{DryRun: true})
		Expect(result.DryRun).To(BeTrue())
		Expect(result.Imported).To(Equal(2))
		Expect(f.count()).To(BeZero())
		Expect(f.publisher.Types()).NotTo(ContainElement(events.EventTypeExpensesImported))
	})

	It("should reject unknown mapped categories before writing anything", func() {
		_, err := f.importer.Import(ctx, strings.NewReader(statement), expense.ImportRequest{
			CategoryMapping: map[string]string{"corner cafe": "Restaurants"},
		})
		appErr, ok := appErrors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(appErrors.ErrorTypeValidation))
		Expect(f.count()).To(BeZero())
	})

	It("should count credit rows as excluded", func() {
		csv := "Transaction Date,Details,Debit,Credit,Category,Subcategory\n" +
			"01 Mar 2026,Coles,30.00,,Food,Groceries\n" +
			"02 Mar 2026,Refund,,15.00,Food,Groceries\n"
		result, err := f.importer.Import(ctx, strings.NewReader(csv), expense.ImportRequest{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Format).To(Equal("pocketbook"))
		Expect(result.Imported).To(Equal(1))
		Expect(result.Excluded).To(Equal(1))
		Expect(result.Rows[0].Category).To(Equal("Groceries"))
	})

	It("should exclude card payments on a signed statement", func() {
		csv := "Date,Description,Card Member,Amount\n" +
			"01/03/2026,WOOLWORTHS 55 SYDNEY,J SMITH,120.00\n" +
			"02/03/2026,PAYMENT RECEIVED - THANK YOU,J SMITH,-1000.00\n"
		result, err := f.importer.Import(ctx, strings.NewReader(csv), expense.ImportRequest{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Format).To(Equal("amex"))
		Expect(result.Imported).To(Equal(1))
		Expect(result.Excluded).To(Equal(1))
		Expect(result.Uncategorized).To(BeEmpty())
		Expect(result.ImportedTotal).To(Equal(120.0))
		Expect(f.count()).To(Equal(int64(1)))
	})
})

package budget_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/budget"
)

var _ = Describe("SettingsFromConfig", func() {
	It("should keep defaults for unset thresholds", func() {
		s, err := budget.SettingsFromConfig(internal.BudgetConfig{Timezone: "UTC", WarningPercent: 75})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Location).To(Equal(time.UTC))
		Expect(s.WarningPercent.Equal(decimal.NewFromInt(75))).To(BeTrue())
		Expect(s.TrendPercent.Equal(decimal.NewFromInt(20))).To(BeTrue())
		Expect(s.UnusualRatio.Equal(decimal.RequireFromString("1.5"))).To(BeTrue())
		Expect(s.Classify(decimal.NewFromInt(76))).To(Equal(budget.StatusWarning))
	})

	It("should reject an unknown timezone", func() {
		_, err := budget.SettingsFromConfig(internal.BudgetConfig{Timezone: "Mars/Olympus_Mons"})
		Expect(err).To(HaveOccurred())
	})
})

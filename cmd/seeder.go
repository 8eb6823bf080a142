package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	"github.com/frahmantamala/budget-tracker/internal/income"
	"github.com/frahmantamala/budget-tracker/internal/rule"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a starter budget",
	Long:  `Seed budget categories, categorization rules and an income source for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx, cancel := errors.WithTimeout(context.Background(), 0)
		defer cancel()

		if clearData {
			if err := clearLedger(deps.Gorm); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := seedCategories(ctx, deps.Categories); err != nil {
			log.Fatalf("failed to seed categories: %v", err)
		}
		if err := seedRules(ctx, deps.Rules); err != nil {
			log.Fatalf("failed to seed rules: %v", err)
		}
		if err := seedIncome(ctx, deps.Income); err != nil {
			log.Fatalf("failed to seed income sources: %v", err)
		}
		fmt.Println("Seed data loaded successfully")
	},
}

type seedCategory struct {
	Name   string
	Parent string
	Period string
	Budget string
}

var seedCategoryList = []seedCategory{
	{"Food", "", "MONTHLY", "0"},
	{"Groceries", "Food", "MONTHLY", "600"},
	{"Dining Out", "Food", "MONTHLY", "150"},
	{"Transport", "", "WEEKLY", "60"},
	{"Housing", "", "MONTHLY", "0"},
	{"Rent", "Housing", "MONTHLY", "2200"},
	{"Utilities", "Housing", "QUARTERLY", "450"},
	{"Insurance", "", "YEARLY", "1800"},
	{"Entertainment", "", "FORTNIGHTLY", "80"},
}

var seedRuleList = []rule.CreateRuleDTO{
	{Pattern: "WOOLWORTHS", MatchType: "CONTAINS", Category: "Groceries", Priority: 10},
	{Pattern: "COLES", MatchType: "CONTAINS", Category: "Groceries", Priority: 10},
	{Pattern: "ALDI", MatchType: "STARTS_WITH", Category: "Groceries", Priority: 5},
	{Pattern: "UBER\\s*EATS|MENULOG|DOORDASH", MatchType: "REGEX", Category: "Dining Out", Priority: 20},
	{Pattern: "UBER", MatchType: "CONTAINS", Category: "Transport", Priority: 5},
	{Pattern: "OPAL", MatchType: "CONTAINS", Category: "Transport", Priority: 5},
	{Pattern: "NETFLIX|SPOTIFY", MatchType: "REGEX", Category: "Entertainment", Priority: 5},
	{Pattern: "ENERGYAUSTRALIA", MatchType: "CONTAINS", Category: "Utilities", Priority: 5},
}

func seedCategories(ctx context.Context, svc *category.Service) error {
	for _, c := range seedCategoryList {
		_, err := svc.Upsert(ctx, &category.CreateCategoryDTO{
			Name:         c.Name,
			Parent:       c.Parent,
			Period:       c.Period,
			BudgetAmount: decimal.RequireFromString(c.Budget),
		})
		if err != nil {
			return fmt.Errorf("category %s: %w", c.Name, err)
		}
		fmt.Printf("Seeded category: %s\n", c.Name)
	}
	return nil
}

func seedRules(ctx context.Context, svc *rule.Service) error {
	existing, err := svc.ListRules(ctx, true)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, r := range existing {
		seen[strings.ToLower(r.Pattern+"|"+r.CategoryName)] = true
	}

	for i := range seedRuleList {
		dto := seedRuleList[i]
		if seen[strings.ToLower(dto.Pattern+"|"+dto.Category)] {
			continue
		}
		if _, err := svc.Create(ctx, &dto); err != nil {
			return fmt.Errorf("rule %s: %w", dto.Pattern, err)
		}
		fmt.Printf("Seeded rule: %s -> %s\n", dto.Pattern, dto.Category)
	}
	return nil
}

func seedIncome(ctx context.Context, svc *income.Service) error {
	_, err := svc.CreateSource(ctx, &income.CreateSourceDTO{
		Name:           "Salary",
		ExpectedAmount: decimal.NewFromInt(6500),
		PayDay:         15,
	})
	if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeConflict {
		fmt.Println("income source Salary already exists")
		return nil
	}
	return err
}

// clearLedger removes all rows, children before parents.
func clearLedger(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM incomes",
			"DELETE FROM income_sources",
			"DELETE FROM expenses",
			"DELETE FROM categorization_rules",
			"DELETE FROM budget_categories WHERE parent_id IS NOT NULL",
			"DELETE FROM budget_categories",
		} {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

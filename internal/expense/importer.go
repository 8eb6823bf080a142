package expense

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/category"
	expenseDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/budget-tracker/internal/core/events"
	"github.com/frahmantamala/budget-tracker/internal/core/money"
	"github.com/frahmantamala/budget-tracker/internal/core/period"
	"github.com/frahmantamala/budget-tracker/internal/rule"
)

const (
	ResolvedByColumn  = "column"
	ResolvedByMapping = "mapping"
	ResolvedByRule    = "rule"
)

// Rows resolving to these categories are money moving between accounts, not spending.
var excludedCategories = map[string]bool{"transfer": true, "income": true}

type ImportRequest struct {
	Format          string            `json:"format,omitempty"`
	Columns         *ColumnMapping    `json:"columns,omitempty"`
	DateLayout      string            `json:"date_layout,omitempty"`
	CategoryMapping map[string]string `json:"category_mapping,omitempty"`
	DryRun          bool              `json:"dry_run"`
}

type ImportedRow struct {
	Line        int     `json:"line"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ResolvedBy  string  `json:"resolved_by"`
}

type UncategorizedRow struct {
	Line        int     `json:"line"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type ImportResult struct {
	BatchID       string             `json:"batch_id"`
	Format        string             `json:"format"`
	DryRun        bool               `json:"dry_run"`
	TotalRows     int                `json:"total_rows"`
	Imported      int                `json:"imported"`
	Duplicates    int                `json:"duplicates"`
	Excluded      int                `json:"excluded"`
	ImportedTotal float64            `json:"imported_total"`
	Rows          []ImportedRow      `json:"rows"`
	Uncategorized []UncategorizedRow `json:"uncategorized"`
	Errors        []RowError         `json:"errors"`
}

type ActiveCategories interface {
	ActiveByName(ctx context.Context) (map[string]*category.Category, error)
}

type RuleLoader interface {
	Load(ctx context.Context) (*rule.Matcher, error)
}

// Importer turns bank statements into expenses. Duplicates are detected by
// natural key with one batch read, and new rows go in with one bulk insert,
// so re-running an import is safe.
type Importer struct {
	repo       RepositoryAPI
	categories ActiveCategories
	rules      RuleLoader
	publisher  Publisher
	location   *time.Location
	logger     *slog.Logger
}

func NewImporter(repo RepositoryAPI, categories ActiveCategories, rules RuleLoader, publisher Publisher, location *time.Location, logger *slog.Logger) *Importer {
	if location == nil {
		location = time.Local
	}
	return &Importer{
		repo:       repo,
		categories: categories,
		rules:      rules,
		publisher:  publisher,
		location:   location,
		logger:     logger,
	}
}

type candidate struct {
	row      StatementRow
	category *category.Category
	key      string
	via      string
}

func (im *Importer) Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportResult, error) {
	parsed, err := ParseStatement(r, ParseOptions{
		Format:     req.Format,
		Columns:    req.Columns,
		DateLayout: req.DateLayout,
		Location:   im.location,
	})
	if err != nil {
		return nil, err
	}

	active, err := im.categories.ActiveByName(ctx)
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]*category.Category, len(req.CategoryMapping))
	var unknown []errors.ValidationError
	for desc, name := range req.CategoryMapping {
		cat, ok := active[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			unknown = append(unknown, errors.ValidationError{
				Field:   "category_mapping",
				Message: fmt.Sprintf("category %q does not exist", name),
				Code:    string(errors.ErrCodeInvalidCategory),
			})
			continue
		}
		mapping[strings.ToLower(strings.TrimSpace(desc))] = cat
	}
	if len(unknown) > 0 {
		return nil, errors.NewValidationErrors("category mapping names unknown categories", errors.ErrCodeInvalidCategory, unknown)
	}

	matcher, err := im.rules.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		BatchID:       uuid.New().String(),
		Format:        parsed.Format,
		DryRun:        req.DryRun,
		TotalRows:     len(parsed.Rows) + len(parsed.Errors),
		Rows:          []ImportedRow{},
		Uncategorized: []UncategorizedRow{},
		Errors:        parsed.Errors,
	}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	seen := make(map[string]bool)
	var candidates []candidate
	for _, row := range parsed.Rows {
		if row.IsCredit {
			result.Excluded++
			continue
		}

		cat, via := im.resolve(row, active, mapping, matcher)
		if cat == nil {
			result.Uncategorized = append(result.Uncategorized, UncategorizedRow{
				Line:        row.Line,
				Date:        row.Date.Format(period.DateLayout),
				Amount:      money.Float(row.Amount),
				Description: row.Description,
			})
			continue
		}
		if excludedCategories[strings.ToLower(cat.Name)] {
			result.Excluded++
			continue
		}

		key := NaturalKey(row.RawDate, row.RawAmount, row.Description)
		if seen[key] {
			result.Duplicates++
			continue
		}
		seen[key] = true
		candidates = append(candidates, candidate{row: row, category: cat, key: key, via: via})
	}

	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.key)
	}
	existing := make(map[string]bool)
	if len(keys) > 0 {
		found, err := im.repo.FindByBankReferences(ctx, keys)
		if err != nil {
			im.logger.Error("failed to check existing bank references", "error", err)
			return nil, errors.NewInternalError("failed to check for duplicate transactions", err)
		}
		for _, k := range found {
			existing[k] = true
		}
	}

	now := time.Now()
	total := decimal.Zero
	var rows []*Expense
	for _, c := range candidates {
		if existing[c.key] {
			result.Duplicates++
			continue
		}
		ref := c.key
		exp := &Expense{
			Date:          c.row.Date,
			Amount:        c.row.Amount,
			CategoryID:    c.category.ID,
			CategoryName:  c.category.Name,
			Description:   c.row.Description,
			Source:        SourceBankImport,
			BankReference: &ref,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if c.row.Merchant != "" {
			merchant := c.row.Merchant
			exp.MerchantName = &merchant
		}
		rows = append(rows, exp)
		total = total.Add(exp.Amount)
		result.Rows = append(result.Rows, ImportedRow{
			Line:        c.row.Line,
			Date:        c.row.Date.Format(period.DateLayout),
			Amount:      money.Float(c.row.Amount),
			Description: c.row.Description,
			Category:    c.category.Name,
			ResolvedBy:  c.via,
		})
	}
	result.ImportedTotal = money.Float(total)

	if req.DryRun || len(rows) == 0 {
		if req.DryRun {
			result.Imported = len(rows)
		}
		im.logger.Info("expense import finished without writing",
			"batch_id", result.BatchID, "dry_run", req.DryRun, "candidates", len(rows), "duplicates", result.Duplicates)
		return result, nil
	}

	models := make([]*expenseDatamodel.Expense, 0, len(rows))
	for _, e := range rows {
		models = append(models, ToDataModel(e))
	}
	inserted, err := im.repo.InsertMany(ctx, models)
	if err != nil {
		im.logger.Error("failed to insert imported expenses", "batch_id", result.BatchID, "error", err)
		return nil, errors.NewInternalError("failed to import expenses", err)
	}
	result.Imported = inserted

	im.logger.Info("expenses imported",
		"batch_id", result.BatchID,
		"format", result.Format,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"uncategorized", len(result.Uncategorized),
		"errors", len(result.Errors),
		"subject", errors.SubjectFromContext(ctx))

	if im.publisher != nil {
		evt := events.NewExpensesImportedEvent(result.BatchID, result.Imported, result.Duplicates, len(result.Uncategorized), total.StringFixed(2))
		if err := im.publisher.Publish(ctx, evt); err != nil {
			im.logger.Warn("failed to publish import event", "batch_id", result.BatchID, "error", err)
		}
	}
	return result, nil
}

// resolve applies the category column, then the caller's mapping, then the rules.
func (im *Importer) resolve(row StatementRow, active map[string]*category.Category, mapping map[string]*category.Category, matcher *rule.Matcher) (*category.Category, string) {
	for _, name := range []string{row.Subcategory, row.Category} {
		if name == "" {
			continue
		}
		if cat, ok := active[strings.ToLower(name)]; ok {
			return cat, ResolvedByColumn
		}
	}
	if cat, ok := mapping[strings.ToLower(strings.TrimSpace(row.Description))]; ok {
		return cat, ResolvedByMapping
	}
	if s := matcher.Match(row.Description); s.Matched {
		return &category.Category{ID: *s.CategoryID, Name: s.CategoryName, IsActive: true}, ResolvedByRule
	}
	return nil, ""
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	errors "github.com/frahmantamala/budget-tracker/internal"
	"github.com/frahmantamala/budget-tracker/internal/expense"
)

var (
	importFormat     string
	importDateLayout string
	importDryRun     bool
	importMapping    map[string]string
	importJSON       bool
)

const importTimeout = 2 * time.Minute

var importCmd = &cobra.Command{
	Use:   "import <statement.csv>",
	Short: "Import a bank statement CSV into the expense ledger",
	Long: `Import a bank statement. Rows already in the ledger are skipped, so the same
file can be imported again safely. Use --dry-run to preview the result.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("failed to open statement: %v", err)
		}
		defer f.Close()

		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx, cancel := errors.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := deps.Importer.Import(ctx, f, expense.ImportRequest{
			Format:          importFormat,
			DateLayout:      importDateLayout,
			CategoryMapping: importMapping,
			DryRun:          importDryRun,
		})
		if errors.IsValidation(err) {
			log.Fatalf("statement rejected, nothing was written: %v", err)
		}
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}

		if importJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				log.Fatalf("failed to write result: %v", err)
			}
			return
		}
		printImportResult(result)
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "statement format: generic, amex, commbank or pocketbook (detected when empty)")
	importCmd.Flags().StringVar(&importDateLayout, "date-layout", "", "Go time layout for the date column")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "preview without writing")
	importCmd.Flags().StringToStringVarP(&importMapping, "map", "m", nil, "statement category to budget category, e.g. --map Supermarkets=Groceries")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the full result as JSON")
}

func printImportResult(r *expense.ImportResult) {
	mode := "imported"
	if r.DryRun {
		mode = "would import"
	}
	fmt.Printf("Format: %s  Batch: %s\n", r.Format, r.BatchID)
	fmt.Printf("Rows: %d  %s: %d (%.2f)  duplicates: %d  excluded: %d\n",
		r.TotalRows, mode, r.Imported, r.ImportedTotal, r.Duplicates, r.Excluded)

	if len(r.Uncategorized) > 0 {
		fmt.Printf("\nUncategorized (%d):\n", len(r.Uncategorized))
		for _, u := range r.Uncategorized {
			fmt.Printf("  line %d  %s  %10.2f  %s\n", u.Line, u.Date, u.Amount, u.Description)
		}
	}
	if len(r.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  line %d  %s\n", e.Line, e.Message)
		}
	}
}

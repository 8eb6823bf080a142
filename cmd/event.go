package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/budget-tracker/internal/core/events"
)

// registerEventHandlers subscribes the in-process consumers of ledger events.
func registerEventHandlers(bus *events.EventBus, log *slog.Logger) {
	bus.Subscribe(events.EventTypeExpensesImported, func(ctx context.Context, event events.Event) error {
		imported, ok := event.(*events.ExpensesImportedEvent)
		if !ok {
			log.Warn("unexpected event payload", "event_type", event.EventType(), "event_id", event.EventID())
			return nil
		}
		log.Info("statement imported",
			"event_id", imported.EventID(),
			"batch_id", imported.BatchID,
			"imported", imported.Imported,
			"duplicates", imported.Duplicates,
			"uncategorized", imported.Uncategorized,
			"total", imported.Total)
		if imported.Uncategorized > 0 {
			log.Warn("imported rows need a category rule", "batch_id", imported.BatchID, "uncategorized", imported.Uncategorized)
		}
		return nil
	})

	bus.Subscribe(events.EventTypeExpenseCreated, func(ctx context.Context, event events.Event) error {
		created, ok := event.(*events.ExpenseCreatedEvent)
		if !ok {
			return nil
		}
		log.Debug("expense recorded",
			"expense_id", created.ExpenseID,
			"category_id", created.CategoryID,
			"amount", created.Amount,
			"auto_categorized", created.AutoCategorized)
		return nil
	})
}

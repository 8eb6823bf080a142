package events

const (
	EventTypeExpensesImported = "expenses.imported"
	EventTypeExpenseCreated   = "expense.created"
)

type ExpensesImportedEvent struct {
	BaseEvent
	BatchID       string `json:"batch_id"`
	Imported      int    `json:"imported"`
	Duplicates    int    `json:"duplicates"`
	Uncategorized int    `json:"uncategorized"`
	Total         string `json:"total"`
}

func NewExpensesImportedEvent(batchID string, imported, duplicates, uncategorized int, total string) *ExpensesImportedEvent {
	return &ExpensesImportedEvent{
		BaseEvent: newBaseEvent(EventTypeExpensesImported, map[string]interface{}{
			"batch_id":      batchID,
			"imported":      imported,
			"duplicates":    duplicates,
			"uncategorized": uncategorized,
			"total":         total,
		}),
		BatchID:       batchID,
		Imported:      imported,
		Duplicates:    duplicates,
		Uncategorized: uncategorized,
		Total:         total,
	}
}

type ExpenseCreatedEvent struct {
	BaseEvent
	ExpenseID       int64  `json:"expense_id"`
	CategoryID      int64  `json:"category_id"`
	Amount          string `json:"amount"`
	AutoCategorized bool   `json:"auto_categorized"`
}

func NewExpenseCreatedEvent(expenseID, categoryID int64, amount string, autoCategorized bool) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseEvent: newBaseEvent(EventTypeExpenseCreated, map[string]interface{}{
			"expense_id":       expenseID,
			"category_id":      categoryID,
			"amount":           amount,
			"auto_categorized": autoCategorized,
		}),
		ExpenseID:       expenseID,
		CategoryID:      categoryID,
		Amount:          amount,
		AutoCategorized: autoCategorized,
	}
}

package budget

import (
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/budget-tracker/internal"
)

// SettingsFromConfig overlays the configured tunables on DefaultSettings.
// Zero thresholds keep their defaults.
func SettingsFromConfig(cfg internal.BudgetConfig) (Settings, error) {
	s := DefaultSettings()
	loc, err := cfg.Location()
	if err != nil {
		return Settings{}, err
	}
	s.Location = loc

	overlay := func(dst *decimal.Decimal, v float64) {
		if v > 0 {
			*dst = decimal.NewFromFloat(v)
		}
	}
	overlay(&s.WarningPercent, cfg.WarningPercent)
	overlay(&s.TrendPercent, cfg.TrendPercent)
	overlay(&s.UnusualRatio, cfg.UnusualRatio)
	overlay(&s.UnusualAlertRatio, cfg.UnusualAlertRatio)
	overlay(&s.UnusualMinIncrease, cfg.UnusualMinIncrease)
	return s, nil
}

package rule

import (
	"strings"
	"time"

	ruleDatamodel "github.com/frahmantamala/budget-tracker/internal/core/datamodel/rule"
)

type MatchType string

const (
	MatchContains   MatchType = "CONTAINS"
	MatchStartsWith MatchType = "STARTS_WITH"
	MatchRegex      MatchType = "REGEX"
)

var MatchTypes = []string{string(MatchContains), string(MatchStartsWith), string(MatchRegex)}

func ParseMatchType(s string) (MatchType, bool) {
	mt := MatchType(strings.ToUpper(strings.TrimSpace(s)))
	switch mt {
	case MatchContains, MatchStartsWith, MatchRegex:
		return mt, true
	}
	return "", false
}

type Rule struct {
	ID             int64
	Pattern        string
	MatchType      MatchType
	CategoryID     int64
	CategoryName   string
	CategoryActive bool
	Priority       int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *Rule) ToResponse() RuleResponse {
	return RuleResponse{
		ID:           r.ID,
		Pattern:      r.Pattern,
		MatchType:    string(r.MatchType),
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Priority:     r.Priority,
		IsActive:     r.IsActive,
	}
}

func ToDataModel(r *Rule) *ruleDatamodel.CategorizationRule {
	return &ruleDatamodel.CategorizationRule{
		ID:         r.ID,
		Pattern:    r.Pattern,
		MatchType:  string(r.MatchType),
		CategoryID: r.CategoryID,
		Priority:   r.Priority,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func FromDataModel(r *ruleDatamodel.CategorizationRule) *Rule {
	out := &Rule{
		ID:         r.ID,
		Pattern:    r.Pattern,
		MatchType:  MatchType(r.MatchType),
		CategoryID: r.CategoryID,
		Priority:   r.Priority,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Category != nil {
		out.CategoryName = r.Category.Name
		out.CategoryActive = r.Category.IsActive
	}
	return out
}

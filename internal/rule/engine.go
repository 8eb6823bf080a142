package rule

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	errors "github.com/frahmantamala/budget-tracker/internal"
)

type compiledRule struct {
	rule    *Rule
	pattern string
	re      *regexp.Regexp
}

// Matcher is an ordered, compiled snapshot of the active rules. It is safe
// for concurrent use and is meant to be reused across a batch.
type Matcher struct {
	rules []compiledRule
}

// Engine suggests categories for free-text descriptions. Manual entry, CSV
// import and dry-run suggestion all go through it.
type Engine struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewEngine(repo RepositoryAPI, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// Load snapshots active rules whose category is active, ordered by priority
// desc, then pattern, then id. Regex rules that fail to compile are kept in
// order but never match.
func (e *Engine) Load(ctx context.Context) (*Matcher, error) {
	data, err := e.repo.ListActive(ctx)
	if err != nil {
		e.logger.Error("failed to load categorization rules", "error", err)
		return nil, errors.NewInternalError("failed to load categorization rules", err)
	}

	rules := make([]*Rule, 0, len(data))
	for _, d := range data {
		r := FromDataModel(d)
		if !r.IsActive || !r.CategoryActive {
			continue
		}
		rules = append(rules, r)
	}
	return NewMatcher(rules, e.logger), nil
}

// Ordered returns a copy of rules in evaluation order: priority descending,
// then pattern, then id.
func Ordered(rules []*Rule) []*Rule {
	sorted := make([]*Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Pattern != b.Pattern {
			return a.Pattern < b.Pattern
		}
		return a.ID < b.ID
	})
	return sorted
}

// NewMatcher orders and compiles rules.
func NewMatcher(rules []*Rule, logger *slog.Logger) *Matcher {
	sorted := Ordered(rules)
	m := &Matcher{rules: make([]compiledRule, 0, len(sorted))}
	for _, r := range sorted {
		cr := compiledRule{rule: r, pattern: strings.ToLower(r.Pattern)}
		if r.MatchType == MatchRegex {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				logger.Warn("skipping categorization rule with invalid regex",
					"rule_id", r.ID, "pattern", r.Pattern, "error", err)
			} else {
				cr.re = re
			}
		}
		m.rules = append(m.rules, cr)
	}
	return m
}

func (c compiledRule) matches(lower, original string) bool {
	switch c.rule.MatchType {
	case MatchContains:
		return strings.Contains(lower, c.pattern)
	case MatchStartsWith:
		return strings.HasPrefix(lower, c.pattern)
	case MatchRegex:
		return c.re != nil && c.re.MatchString(original)
	}
	return false
}

// Match returns the first rule that matches description.
func (m *Matcher) Match(description string) Suggestion {
	lower := strings.ToLower(description)
	for _, c := range m.rules {
		if !c.matches(lower, description) {
			continue
		}
		id := c.rule.CategoryID
		resp := c.rule.ToResponse()
		return Suggestion{
			Description:  description,
			Matched:      true,
			CategoryID:   &id,
			CategoryName: c.rule.CategoryName,
			Rule:         &resp,
		}
	}
	return Suggestion{Description: description}
}

func (e *Engine) SuggestCategory(ctx context.Context, description string) (Suggestion, error) {
	m, err := e.Load(ctx)
	if err != nil {
		return Suggestion{}, err
	}
	return m.Match(description), nil
}

// SuggestCategories runs a batch of descriptions against one rule snapshot.
func (e *Engine) SuggestCategories(ctx context.Context, descriptions []string) (*SuggestionsResponse, error) {
	m, err := e.Load(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SuggestionsResponse{Suggestions: make([]Suggestion, 0, len(descriptions))}
	for _, d := range descriptions {
		s := m.Match(d)
		if s.Matched {
			resp.Matched++
		} else {
			resp.Unmatched++
		}
		resp.Suggestions = append(resp.Suggestions, s)
	}
	return resp, nil
}

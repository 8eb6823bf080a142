package rule

type CreateRuleDTO struct {
	Pattern   string `json:"pattern"`
	MatchType string `json:"match_type"`
	Category  string `json:"category"`
	Priority  int    `json:"priority"`
}

type UpdateRuleDTO struct {
	Pattern   *string `json:"pattern,omitempty"`
	MatchType *string `json:"match_type,omitempty"`
	Category  *string `json:"category,omitempty"`
	Priority  *int    `json:"priority,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type SuggestDTO struct {
	Description  string   `json:"description,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

type RuleResponse struct {
	ID           int64  `json:"id"`
	Pattern      string `json:"pattern"`
	MatchType    string `json:"match_type"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Priority     int    `json:"priority"`
	IsActive     bool   `json:"is_active"`
}

type RulesResponse struct {
	Rules []RuleResponse `json:"rules"`
}

type Suggestion struct {
	Description  string        `json:"description"`
	Matched      bool          `json:"matched"`
	CategoryID   *int64        `json:"category_id,omitempty"`
	CategoryName string        `json:"category_name,omitempty"`
	Rule         *RuleResponse `json:"rule,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Matched     int          `json:"matched"`
	Unmatched   int          `json:"unmatched"`
}

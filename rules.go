package finbook

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// StandardizationRule maps a raw bank description to a classification. Rules
// apply in declaration order and the first match wins: the pattern is a
// case-insensitive substring of the candidate's raw description.
type StandardizationRule struct {
	ID          string        `json:"id" yaml:"id,omitempty"`
	Pattern     string        `json:"pattern" yaml:"pattern"`
	Operation   OperationType `json:"operationType" yaml:"operationType"`
	CategoryID  string        `json:"categoryId,omitempty" yaml:"categoryId,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Matches reports whether the rule's pattern occurs in the raw description.
func (r StandardizationRule) Matches(rawDescription string) bool {
	return r.Pattern != "" &&
		strings.Contains(strings.ToLower(rawDescription), strings.ToLower(r.Pattern))
}

// applyRules classifies a candidate with the first matching rule. The rule
// overwrites operation type, category and description; amount and date are
// never touched. A rule pointing at a category that no longer exists still
// matches, leaving the category empty rather than failing.
func (l *Ledger) applyRules(c *CandidateTransaction) {
	for _, r := range l.rules {
		if !r.Matches(c.RawDescription) {
			continue
		}
		if r.Operation != "" {
			c.Operation = r.Operation
		}
		if r.CategoryID != "" {
			if _, ok := l.Category(r.CategoryID); ok {
				c.CategoryID = r.CategoryID
			}
		}
		if r.Description != "" {
			c.Description = r.Description
		}
		c.RuleID = r.ID
		return
	}
}

// ReadRules decodes standardization rules from a YAML document, a list of
// rule objects. Rules keep their file order.
func ReadRules(r io.Reader) ([]StandardizationRule, error) {
	var rules []StandardizationRule
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("cannot parse rules file: %w", err)
	}
	for i, rule := range rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d: pattern is required", i+1)
		}
		if rule.Operation != "" {
			if _, err := ParseOperationType(string(rule.Operation)); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i+1, err)
			}
		}
	}
	return rules, nil
}

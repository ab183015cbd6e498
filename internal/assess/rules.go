package assess

import (
	"strings"
)

// constraintRule maps feedback phrasings to a normalized constraint tag.
// Rules fire independently: one feedback text can yield several constraints.
type constraintRule struct {
	patterns []string
	tag      string
}

// constraintRules is the controlled vocabulary of physical constraints the
// relay can learn from model feedback. Matching is case-insensitive
// substring search, so the policy stays data rather than scattered
// conditionals.
var constraintRules = []constraintRule{
	{
		patterns: []string{"can't move back", "cannot move back"},
		tag:      "cannot move back further",
	},
	{
		patterns: []string{"wall behind", "against wall"},
		tag:      "wall directly behind camera position",
	},
	{
		patterns: []string{"ceiling is low", "low ceiling"},
		tag:      "low ceiling limits vertical framing",
	},
	{
		patterns: []string{"doorway blocks", "blocked by the door"},
		tag:      "doorway restricts camera position",
	},
}

// ExtractConstraints scans feedback text against the rule table and returns
// the constraint tags that fired, in rule-table order. Unmatched text yields
// an empty result, never an error.
func ExtractConstraints(feedback string) []string {
	lower := strings.ToLower(feedback)
	var tags []string
	for _, rule := range constraintRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}

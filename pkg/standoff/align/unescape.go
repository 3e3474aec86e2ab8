package align

import "strings"

// Rule is one entry of the unescape table: a tokenizer spelling and the
// form it may take in the reference text.
type Rule struct {
	From   string
	To     string
	Suffix bool // only rewrite a trailing occurrence of From
}

// DefaultRules lists the known tokenizer normalizations, tried in order.
func DefaultRules() []Rule {
	return []Rule{
		{From: "``", To: `"`},
		{From: "''", To: `"`},
		{From: ".", To: ":", Suffix: true},  // structured abstract heading, "METHODS." vs. "METHODS:"
		{From: "--", To: ":", Suffix: true}, // structured abstract heading, "METHODS --" vs. "METHODS:"
	}
}

// Apply rewrites token with the rule. ok is false when the rule does not
// apply to the token at all.
func (r Rule) Apply(token string) (string, bool) {
	if r.From == "" {
		return "", false
	}
	if r.Suffix {
		if !strings.HasSuffix(token, r.From) {
			return "", false
		}
		return strings.TrimSuffix(token, r.From) + r.To, true
	}
	if !strings.Contains(token, r.From) {
		return "", false
	}
	return strings.ReplaceAll(token, r.From, r.To), true
}

package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindOffsetImmediateMatch(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("IL-2 gene expression")

	assert.Equal(t, 0, a.FindOffset(ref, 0, "IL-2"))
	assert.Equal(t, 5, a.FindOffset(ref, 4, "gene"))
}

func TestFindOffsetSkipsWhitespaceAndPeriods(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("foo . . bar")

	assert.Equal(t, 8, a.FindOffset(ref, 3, "bar"))
}

func TestFindOffsetRefusesToSkipWords(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("foo x bar")

	// whitespace is still consumed, the word is not
	assert.Equal(t, 4, a.FindOffset(ref, 3, "bar"))
}

func TestFindOffsetNotFound(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("foo bar")

	assert.Equal(t, 4, a.FindOffset(ref, 3, "baz"))
}

func TestFindOffsetCountsCharacters(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("α-helix β-sheet")

	assert.Equal(t, 8, a.FindOffset(ref, 7, "β-sheet"))
}

func TestAlignLiteral(t *testing.T) {
	a := New(nil, nil)
	assert.Equal(t, "gene", a.Align([]rune("IL-2 gene"), 5, "gene"))
}

func TestAlignStructuredHeading(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("METHODS: We used ELISA.")

	assert.Equal(t, "METHODS:", a.Align(ref, 0, "METHODS."))
}

func TestAlignDashHeading(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("RESULTS: none")

	assert.Equal(t, "RESULTS:", a.Align(ref, 0, "RESULTS--"))
}

func TestAlignQuotes(t *testing.T) {
	a := New(nil, nil)
	ref := []rune(`termed "lymphokines"`)

	assert.Equal(t, `"`, a.Align(ref, 7, "``"))
	assert.Equal(t, `"`, a.Align(ref, 19, "''"))
}

func TestAlignRespacing(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("NF-kappa B activation")

	assert.Equal(t, "NF-kappa B", a.Align(ref, 0, "NF-kappaB"))
}

func TestAlignRespacingThenUnescape(t *testing.T) {
	a := New(nil, nil)
	ref := []rune("MATERIALS AND METHODS: cells")

	assert.Equal(t, "MATERIALS AND METHODS:", a.Align(ref, 0, "MATERIALSAND METHODS."))
}

func TestAlignReturnsOriginalWhenNothingFits(t *testing.T) {
	a := New(nil, nil)
	assert.Equal(t, "IL-3", a.Align([]rune("IL-2"), 0, "IL-3"))
}

func TestAlignRespacePastEndOfReference(t *testing.T) {
	a := New(nil, nil)
	assert.Equal(t, "abc", a.Align([]rune("ab"), 0, "abc"))
}

func TestAlignCustomRules(t *testing.T) {
	a := New([]Rule{{From: "-LRB-", To: "("}}, nil)
	ref := []rune("(IL-2)")

	assert.Equal(t, "(", a.Align(ref, 0, "-LRB-"))
	// defaults are replaced, not extended
	assert.Equal(t, "METHODS.", a.Align([]rune("METHODS:"), 0, "METHODS."))
}

func TestRuleOrderIsDeterministic(t *testing.T) {
	// both rules apply to the token, the first listed wins
	a := New([]Rule{
		{From: "x", To: "y"},
		{From: "x", To: "y"},
	}, nil)
	assert.Equal(t, []Rule{{From: "x", To: "y"}, {From: "x", To: "y"}}, a.Rules())

	rules := DefaultRules()
	assert.Equal(t, "``", rules[0].From)
	assert.Equal(t, "''", rules[1].From)
	assert.Equal(t, ".", rules[2].From)
	assert.Equal(t, "--", rules[3].From)
}

func TestRuleApply(t *testing.T) {
	tests := []struct {
		rule  Rule
		token string
		want  string
		ok    bool
	}{
		{Rule{From: "``", To: `"`}, "``", `"`, true},
		{Rule{From: "``", To: `"`}, "``a``", `"a"`, true},
		{Rule{From: ".", To: ":", Suffix: true}, "METHODS.", "METHODS:", true},
		{Rule{From: ".", To: ":", Suffix: true}, "U.S", "", false},
		{Rule{From: ".", To: ":", Suffix: true}, "U.S.", "U.S:", true},
		{Rule{From: "", To: ":"}, "abc", "", false},
	}
	for _, tt := range tests {
		got, ok := tt.rule.Apply(tt.token)
		assert.Equal(t, tt.ok, ok, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestFindClosingBracket(t *testing.T) {
	lines := []string{"[\tO", "published\tO", "", "erratum\tO", "]\tO", "Cells\tO"}

	idx, ok := FindClosingBracket(lines, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = FindClosingBracket(lines[:4], 0, 0)
	assert.False(t, ok)
}

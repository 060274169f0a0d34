package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// evidenceRadius is how many characters of context surround the first match.
const evidenceRadius = 30

// PatternRule is a regex red flag. All matches of one rule collapse into a
// single flaw.
type PatternRule struct {
	FlawType    string
	Severity    ir.Severity
	Regex       *regexp.Regexp
	Description string
	Suggestion  string
}

// PatternSet is an ordered, immutable list of pattern rules. Order is the
// tie-break between flaws of equal severity.
type PatternSet struct {
	rules []PatternRule
}

var builtinPatterns = []PatternRule{
	{
		FlawType:    "AMBIGUOUS_PARTIES",
		Severity:    ir.SeverityCritical,
		Regex:       regexp.MustCompile(`(?i)\b(someone|somebody|party [a-z]|the other party)\b`),
		Description: "Document uses vague party identifiers",
		Suggestion:  "Replace with specific party names",
	},
	{
		FlawType:    "INCOMPLETE_TERMS",
		Severity:    ir.SeverityCritical,
		Regex:       regexp.MustCompile(`(?i)\b(some amount|to be determined|tbd|___+)\b`),
		Description: "Document contains incomplete terms",
		Suggestion:  "Fill in all specific terms",
	},
	{
		FlawType:    "INVALID_DURATION",
		Severity:    ir.SeverityHigh,
		Regex:       regexp.MustCompile(`(?i)\b(forever|perpetual|indefinite)\b`),
		Description: "Potentially unenforceable perpetual terms",
		Suggestion:  "Specify a reasonable fixed term",
	},
	{
		FlawType:    "WEAK_OBLIGATIONS",
		Severity:    ir.SeverityMedium,
		Regex:       regexp.MustCompile(`(?i)\b(may|might|possibly)\b`),
		Description: "Weak, non-binding language",
		Suggestion:  "Use 'shall', 'will', 'must'",
	},
}

var defaultPatterns = &PatternSet{rules: builtinPatterns}

// DefaultPatterns returns the shared built-in rule set.
func DefaultPatterns() *PatternSet { return defaultPatterns }

// NewPatternSet returns the built-in rules followed by extra, in order.
// Extra rules must be complete and must not reuse a flaw type already in the set.
func NewPatternSet(extra ...PatternRule) (*PatternSet, error) {
	all := make([]PatternRule, 0, len(builtinPatterns)+len(extra))
	all = append(all, builtinPatterns...)
	seen := make(map[string]bool, cap(all))
	for _, r := range builtinPatterns {
		seen[r.FlawType] = true
	}
	for _, r := range extra {
		switch {
		case r.FlawType == "":
			return nil, fmt.Errorf("pattern rule: empty flaw type")
		case r.Regex == nil:
			return nil, fmt.Errorf("pattern rule %s: nil regex", r.FlawType)
		case r.Severity.Rank() > 3:
			return nil, fmt.Errorf("pattern rule %s: invalid severity %q", r.FlawType, r.Severity)
		case seen[r.FlawType]:
			return nil, fmt.Errorf("pattern rule %s: duplicate flaw type", r.FlawType)
		}
		seen[r.FlawType] = true
		all = append(all, r)
	}
	return &PatternSet{rules: all}, nil
}

// Rules returns a copy of the rules in evaluation order.
func (ps *PatternSet) Rules() []PatternRule {
	return append([]PatternRule(nil), ps.rules...)
}

func (ps *PatternSet) Len() int { return len(ps.rules) }

// Scan evaluates every rule against text and returns at most one flaw per rule.
func (ps *PatternSet) Scan(text string) []ir.Flaw {
	var out []ir.Flaw
	for _, r := range ps.rules {
		matches := r.Regex.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		first := matches[0]
		out = append(out, ir.Flaw{
			FlawType:    r.FlawType,
			Severity:    r.Severity,
			Location:    fmt.Sprintf("Line ~%d", strings.Count(text[:first[0]], "\n")+1),
			Description: fmt.Sprintf("%s (%d instance(s))", r.Description, len(matches)),
			Suggestion:  r.Suggestion,
			Evidence:    strings.TrimSpace(window(text, first[0], first[1], evidenceRadius)),
		})
	}
	return out
}

// ScanPatterns runs the built-in rules.
func ScanPatterns(text string) []ir.Flaw { return defaultPatterns.Scan(text) }

// window returns text[start:end] widened by up to n runes on each side.
func window(text string, start, end, n int) string {
	lo := start
	for i := 0; i < n && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < n && hi < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return text[lo:hi]
}

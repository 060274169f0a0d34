// Package rulesdsl loads extra pattern rules from YAML packs.
//
//	rules:
//	  - id: ORAL_AMENDMENT
//	    pattern: '\b(orally|verbal agreement)\b'
//	    severity: LOW
//	    description: Oral amendments are hard to prove
//	    suggestion: Require amendments in writing signed by both parties
//
// Patterns are matched case-insensitively against the original text, the
// same way the built-in patterns are.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Severity    string `yaml:"severity"` // CRITICAL|HIGH|MEDIUM|LOW
	Description string `yaml:"description"`
	Suggestion  string `yaml:"suggestion"`
}

// Load reads one pack file.
func Load(path string) ([]rules.PatternRule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules pack: %w", err)
	}
	out, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// LoadAll reads every pack and builds a pattern set on top of the built-ins.
func LoadAll(paths ...string) (*rules.PatternSet, error) {
	var extra []rules.PatternRule
	for _, p := range paths {
		rs, err := Load(p)
		if err != nil {
			return nil, err
		}
		extra = append(extra, rs...)
	}
	return rules.NewPatternSet(extra...)
}

// Parse compiles a pack from YAML bytes.
func Parse(b []byte) ([]rules.PatternRule, error) {
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]rules.PatternRule, 0, len(pack.Rules))
	for _, r := range pack.Rules {
		pr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		out = append(out, pr)
	}
	return out, nil
}

func compile(r dslRule) (rules.PatternRule, error) {
	if strings.TrimSpace(r.ID) == "" || r.Pattern == "" || r.Severity == "" || r.Description == "" {
		return rules.PatternRule{}, fmt.Errorf("missing required fields (id/pattern/severity/description)")
	}
	sev, err := ir.ParseSeverity(r.Severity)
	if err != nil {
		return rules.PatternRule{}, err
	}
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return rules.PatternRule{}, fmt.Errorf("pattern: %w", err)
	}
	return rules.PatternRule{
		FlawType:    strings.ToUpper(strings.TrimSpace(r.ID)),
		Severity:    sev,
		Regex:       re,
		Description: r.Description,
		Suggestion:  r.Suggestion,
	}, nil
}

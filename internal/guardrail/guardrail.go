// Package guardrail validates user input before the pipeline starts.
// It covers length limits and a small banned-content rule set; extra rules
// can be layered on from a YAML file.
package guardrail

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Violation is one failed validation rule.
type Violation struct {
	RuleName string
	Message  string
	Severity string // "error" or "warning"
}

// Guardrail validates user queries. Construct with New and inject it into
// the pipeline controller; there is no process-wide instance.
type Guardrail struct {
	MinQueryLength int
	MaxQueryLength int

	patterns []bannedPattern
}

type bannedPattern struct {
	re       *regexp.Regexp
	category string
}

// builtinRules are the default banned-content categories.
var builtinRules = []struct {
	Pattern  string
	Category string
}{
	{`(?i)\b(kill|murder|assassinat|massacre|slaughter)\b.*\b(people|person|human|child)`, "Violence"},
	{`(?i)\b(sexual\s+abuse|rape|molestation|child\s+porn)`, "Sexual abuse"},
	{`(?i)\b(hate\s+speech|racial\s+slur|white\s+supremac|ethnic\s+cleansing)`, "Hate speech"},
	{`(?i)\b(suicide\s+method|how\s+to\s+harm|self[\-\s]harm\s+instruction)`, "Self-harm"},
	{`(?i)\b(bomb\s+making|weapon\s+instruction|explosive\s+recipe)`, "Dangerous content"},
}

// New creates a guardrail with the built-in rule set.
func New() *Guardrail {
	g := &Guardrail{
		MinQueryLength: 3,
		MaxQueryLength: 5000,
	}
	for _, r := range builtinRules {
		// Built-in patterns are compile-checked by tests; skip on error
		// rather than fail construction.
		if re, err := regexp.Compile(r.Pattern); err == nil {
			g.patterns = append(g.patterns, bannedPattern{re: re, category: r.Category})
		}
	}
	return g
}

// ruleFile is the YAML shape for extra banned-content rules.
type ruleFile struct {
	Rules []struct {
		Pattern  string `yaml:"pattern"`
		Category string `yaml:"category"`
	} `yaml:"rules"`
}

// LoadRules merges extra banned patterns from a YAML file. Patterns that
// fail to compile are skipped with an error naming them.
func (g *Guardrail) LoadRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse rules file %s: %w", path, err)
	}

	for _, r := range rf.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid rule pattern %q: %w", r.Pattern, err)
		}
		g.patterns = append(g.patterns, bannedPattern{re: re, category: r.Category})
	}
	return nil
}

// ValidateInput checks a user query against all rules. The query is valid
// when no error-severity violations were found.
func (g *Guardrail) ValidateInput(userQuery string) (bool, []Violation) {
	var violations []Violation

	if strings.TrimSpace(userQuery) == "" {
		violations = append(violations, Violation{
			RuleName: "required",
			Message:  "Query cannot be empty",
			Severity: "error",
		})
		return false, violations
	}

	if len(userQuery) < g.MinQueryLength {
		violations = append(violations, Violation{
			RuleName: "min_length",
			Message:  fmt.Sprintf("Query must be at least %d characters", g.MinQueryLength),
			Severity: "error",
		})
	}
	if len(userQuery) > g.MaxQueryLength {
		violations = append(violations, Violation{
			RuleName: "max_length",
			Message:  fmt.Sprintf("Query must not exceed %d characters", g.MaxQueryLength),
			Severity: "error",
		})
	}

	for _, p := range g.patterns {
		if p.re.MatchString(userQuery) {
			violations = append(violations, Violation{
				RuleName: "content_moderation",
				Message:  fmt.Sprintf("Content flagged: %s", p.category),
				Severity: "error",
			})
		}
	}

	for _, v := range violations {
		if v.Severity == "error" {
			return false, violations
		}
	}
	return true, violations
}

// Summary formats violations into a single human-readable string.
func Summary(violations []Violation) string {
	if len(violations) == 0 {
		return "All guardrails passed."
	}

	var errors, warnings int
	for _, v := range violations {
		if v.Severity == "error" {
			errors++
		} else {
			warnings++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation failed: %d error(s), %d warning(s)\n", errors, warnings)
	for _, v := range violations {
		fmt.Fprintf(&b, "  [%s] %s\n", strings.ToUpper(v.Severity), v.Message)
	}
	return b.String()
}

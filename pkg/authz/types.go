package authz

import (
	"bufio"
	"fmt"
	"strings"
)

// Section is the casbin policy type of a rule line.
type Section string

const (
	SectionPolicy   Section = "p"
	SectionGrouping Section = "g"
)

// Rule is one parsed policy line: "p, role, permission" or "g, role, parent".
type Rule struct {
	Section Section
	Subject string
	Target  string
}

func (r Rule) params() []any {
	return []any{r.Subject, r.Target}
}

// ParsePolicy reads casbin CSV policy text. Blank lines and # comments are skipped.
func ParsePolicy(text string) ([]Rule, error) {
	var rules []Rule
	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return nil, configError("policy line %d: expected 3 fields, got %d", line, len(parts))
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] == "" {
				return nil, configError("policy line %d: empty field", line)
			}
		}
		section := Section(parts[0])
		if section != SectionPolicy && section != SectionGrouping {
			return nil, configError("policy line %d: unknown section %q", line, parts[0])
		}
		rules = append(rules, Rule{Section: section, Subject: parts[1], Target: parts[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("authz: scan policy: %w", err)
	}
	return rules, nil
}

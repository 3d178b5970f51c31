package render

import (
	"fmt"
	"strings"

	"github.com/rafaesapata/evo-qa/pkg/suite"
)

// SuiteMarkdown builds a markdown listing of the suite's test cases,
// suitable for passing to Markdown.
func SuiteMarkdown(s *suite.Suite) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Description)
	}
	fmt.Fprintf(&b, "%d test cases\n\n", len(s.Cases))

	b.WriteString("| ID | Name | Category | Priority | Steps | Tags |\n")
	b.WriteString("|----|------|----------|----------|-------|------|\n")
	for _, c := range s.Cases {
		tags := strings.Join(c.Tags, ", ")
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s |\n",
			c.ID, c.Name, c.Category, c.Priority, len(c.Steps), tags)
	}

	return b.String()
}

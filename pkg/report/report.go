// Package report renders a suite result into durable artifacts: a
// self-contained HTML page, a machine-readable JSON file and a console
// summary. All three are independent views of the same immutable input.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rafaesapata/evo-qa/pkg/runner"
)

// WriteJSON serializes the suite result verbatim to path, creating parent
// directories as needed. The output round-trips: parsing it back yields the
// same structure, including nested step results.
func WriteJSON(res *runner.SuiteResult, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal suite result: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

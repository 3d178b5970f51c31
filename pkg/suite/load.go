package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileSuite mirrors the YAML fixture layout. Steps declare timeouts in
// milliseconds and setup/teardown as instruction lists; Load converts both
// into the runtime types.
type fileSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Cases       []fileCase `yaml:"cases"`
}

type fileCase struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Category    string     `yaml:"category"`
	Priority    string     `yaml:"priority"`
	Tags        []string   `yaml:"tags"`
	Setup       []string   `yaml:"setup"`
	Teardown    []string   `yaml:"teardown"`
	Steps       []fileStep `yaml:"steps"`
}

type fileStep struct {
	Name      string            `yaml:"name"`
	Action    string            `yaml:"action"`
	Expect    string            `yaml:"expect"`
	Verify    string            `yaml:"verify"`
	Schema    map[string]string `yaml:"schema"`
	TimeoutMs int               `yaml:"timeout_ms"`
	Optional  bool              `yaml:"optional"`
}

// Load reads and validates one suite fixture file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config or CLI args
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	var fs fileSuite
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	name := fs.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s := &Suite{Name: name, Description: fs.Description}
	seen := map[string]bool{}

	for _, fc := range fs.Cases {
		c := Case{
			ID:          fc.ID,
			Name:        fc.Name,
			Description: fc.Description,
			Category:    Category(fc.Category),
			Priority:    Priority(fc.Priority),
			Tags:        fc.Tags,
			Setup:       InstructionsHook(fc.Setup),
			Teardown:    InstructionsHook(fc.Teardown),
		}
		for _, st := range fc.Steps {
			c.Steps = append(c.Steps, Step{
				Name:     st.Name,
				Action:   st.Action,
				Expect:   st.Expect,
				Verify:   st.Verify,
				Schema:   st.Schema,
				Timeout:  time.Duration(st.TimeoutMs) * time.Millisecond,
				Optional: st.Optional,
			})
		}

		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("suite %s: %w", path, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("suite %s: duplicate case id %q", path, c.ID)
		}
		seen[c.ID] = true

		s.Cases = append(s.Cases, c)
	}

	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("suite %s: no cases defined", path)
	}

	return s, nil
}

// LoadDir loads every *.yml/*.yaml fixture in dir, sorted by filename, and
// merges them into a single suite named after the directory.
func LoadDir(dir string) (*Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suites dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yml" || ext == ".yaml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no suite files found in %s", dir)
	}

	merged := &Suite{Name: filepath.Base(dir)}
	seen := map[string]string{} // case id -> file

	for _, f := range files {
		s, err := Load(f)
		if err != nil {
			return nil, err
		}
		for _, c := range s.Cases {
			if prev, dup := seen[c.ID]; dup {
				return nil, fmt.Errorf("case id %q defined in both %s and %s", c.ID, prev, f)
			}
			seen[c.ID] = f
		}
		merged.Cases = append(merged.Cases, s.Cases...)
	}

	return merged, nil
}

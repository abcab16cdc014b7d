// pkg/registry/registry.go
package registry

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadCatalog(path string) (*SectionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog document. Unknown keys are rejected so typos surface early.
func ParseCatalog(data []byte) (*SectionCatalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c SectionCatalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode section catalog: %w", err)
	}
	return &c, nil
}

func SaveCatalog(path string, c *SectionCatalog) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Find returns the entry for key.
func (c *SectionCatalog) Find(key string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Keys returns the section keys in catalog order.
func (c *SectionCatalog) Keys() []string {
	keys := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		keys = append(keys, s.Key)
	}
	return keys
}

// Validate reports every problem found in the catalog. An empty result means the catalog is usable.
func (c *SectionCatalog) Validate() []string {
	var problems []string
	if strings.TrimSpace(c.Version) == "" {
		problems = append(problems, "version is required")
	}
	if len(c.Sections) == 0 {
		problems = append(problems, "at least one section is required")
	}

	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		where := fmt.Sprintf("sections[%d]", i)
		if s.Key == "" {
			problems = append(problems, where+": key is required")
		} else {
			where = fmt.Sprintf("section %q", s.Key)
			if seen[s.Key] {
				problems = append(problems, where+": duplicate key")
			}
			seen[s.Key] = true
		}
		if strings.TrimSpace(s.Title) == "" {
			problems = append(problems, where+": title is required")
		}
		if s.Template == "" {
			problems = append(problems, where+": template is required")
		}
		if !validBottomPanels[s.BottomPanel] {
			problems = append(problems, fmt.Sprintf("%s: unknown bottom panel %q", where, s.BottomPanel))
		}
		if !validStatuses[s.ImplementationStatus] {
			problems = append(problems, fmt.Sprintf("%s: unknown implementation status %q", where, s.ImplementationStatus))
		}
	}
	return problems
}

// Missing returns the keys from want that the catalog does not list, sorted.
func (c *SectionCatalog) Missing(want []string) []string {
	var missing []string
	for _, key := range want {
		if _, ok := c.Find(key); !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// pkg/registry/schema.go
package registry

// SectionCatalog describes the dashboard sections an installation ships.
type SectionCatalog struct {
	Version     string    `yaml:"version"`
	LastUpdated string    `yaml:"lastUpdated"`
	Sections    []Section `yaml:"sections"`
}

type Section struct {
	Key                  string   `yaml:"key"`
	Title                string   `yaml:"title"`
	Description          string   `yaml:"description,omitempty"`
	Template             string   `yaml:"template"`
	BottomPanel          string   `yaml:"bottomPanel"`
	ImplementationStatus string   `yaml:"implementationStatus"`
	Tags                 []string `yaml:"tags,omitempty"`
}

const (
	StatusPlanned          = "planned"
	StatusInProgress       = "in-progress"
	StatusImplemented      = "implemented"
	StatusUnderDevelopment = "under-development"
)

var validStatuses = map[string]bool{
	StatusPlanned:          true,
	StatusInProgress:       true,
	StatusImplemented:      true,
	StatusUnderDevelopment: true,
}

var validBottomPanels = map[string]bool{
	"stats":         true,
	"calendar":      true,
	"default-stats": true,
}

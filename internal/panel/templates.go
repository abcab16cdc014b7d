package panel

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/models"
)

// Fragments rendered when a section cannot produce its own content.
const builtinFragments = `
{{define "panel-loading"}}<div class="panel-loading" role="status"><div class="spinner"></div><p>Loading {{.Label}}...</p></div>{{end}}
{{define "panel-error"}}<div class="alert alert-danger" role="alert"><h5>Failed to load {{.Label}}</h5><p>{{.Message}}</p><button class="btn btn-outline-danger" data-action="retry" data-section="{{.Section}}">Retry</button></div>{{end}}
{{define "panel-timeout"}}<div class="alert alert-warning" role="alert"><h5>{{.Label}} is taking too long</h5><p>The section did not load within {{.Timeout}}.</p><button class="btn btn-outline-warning" data-action="refresh" data-section="{{.Section}}">Refresh</button></div>{{end}}
{{define "panel-under-development"}}<div class="alert alert-info" role="status"><h5>{{.Label}}</h5><p>This section is under development.</p></div>{{end}}
{{define "panel-empty"}}<div class="panel-empty"><p>{{.Label}}</p></div>{{end}}
`

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"deref64": func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	},
	"statusClass": func(s models.ModerationStatus) string {
		switch s {
		case models.ModerationApproved:
			return "success"
		case models.ModerationRejected:
			return "danger"
		default:
			return "warning"
		}
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04:05")
	},
	"join": strings.Join,
}

// TemplateSet holds the HTML fragments addressable by element id.
type TemplateSet struct {
	root *template.Template
}

// NewTemplateSet parses the fragments matching patterns in fsys on top of the built-in fragments.
func NewTemplateSet(fsys fs.FS, patterns ...string) (*TemplateSet, error) {
	root, err := template.New("panel").Funcs(templateFuncs).Parse(builtinFragments)
	if err != nil {
		return nil, fmt.Errorf("parse built-in fragments: %w", err)
	}
	if fsys != nil && len(patterns) > 0 {
		root, err = root.ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse fragments: %w", err)
		}
	}
	return &TemplateSet{root: root}, nil
}

// ParseTemplateSet builds a set from inline definitions. Used by tests and tools.
func ParseTemplateSet(defs string) (*TemplateSet, error) {
	set, err := NewTemplateSet(nil)
	if err != nil {
		return nil, err
	}
	if _, err := set.root.Parse(defs); err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}
	return set, nil
}

// Has reports whether a fragment with the given id exists.
func (s *TemplateSet) Has(id string) bool {
	return s != nil && s.root.Lookup(id) != nil
}

// Render executes fragment id. A missing fragment yields a TEMPLATE_NOT_FOUND error.
func (s *TemplateSet) Render(id string, data interface{}) (template.HTML, error) {
	if !s.Has(id) {
		return "", apperrors.NewTemplateNotFoundError(id)
	}
	var buf bytes.Buffer
	if err := s.root.ExecuteTemplate(&buf, id, data); err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}
	return template.HTML(buf.String()), nil
}

// Lookup exposes a fragment for callers that stream full pages.
func (s *TemplateSet) Lookup(id string) *template.Template {
	if s == nil {
		return nil
	}
	return s.root.Lookup(id)
}

// renderOrPlaceholder renders id, degrading to the under-development notice when the fragment is missing.
func (s *TemplateSet) renderOrPlaceholder(id, label string, data interface{}) (template.HTML, error) {
	if !s.Has(id) {
		return s.underDevelopment(label), nil
	}
	return s.Render(id, data)
}

type statusBlock struct {
	Label   string
	Section string
	Message string
	Timeout time.Duration
}

func (s *TemplateSet) builtin(id string, data statusBlock) template.HTML {
	out, err := s.Render(id, data)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(data.Label + ": " + data.Message))
	}
	return out
}

func (s *TemplateSet) loading(label string) template.HTML {
	return s.builtin("panel-loading", statusBlock{Label: label})
}

func (s *TemplateSet) errorBlock(label string, section Section, message string) template.HTML {
	return s.builtin("panel-error", statusBlock{Label: label, Section: string(section), Message: message})
}

func (s *TemplateSet) timeoutBlock(label string, section Section, timeout time.Duration) template.HTML {
	return s.builtin("panel-timeout", statusBlock{Label: label, Section: string(section), Timeout: timeout})
}

func (s *TemplateSet) underDevelopment(label string) template.HTML {
	return s.builtin("panel-under-development", statusBlock{Label: label})
}

func (s *TemplateSet) empty(label string) template.HTML {
	return s.builtin("panel-empty", statusBlock{Label: label})
}

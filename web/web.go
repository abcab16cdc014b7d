// Package web embeds the dashboard page and panel fragments.
package web

import (
	"embed"

	"business-directory/internal/panel"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded fragments into a panel template set.
func Templates() (*panel.TemplateSet, error) {
	return panel.NewTemplateSet(files, "templates/*.html")
}

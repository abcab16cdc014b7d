package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"business-directory/internal/panel"
	"business-directory/pkg/registry"
	"business-directory/web"
)

var catalogPath string

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Inspect the dashboard section catalog",
}

var sectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the catalog entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tTITLE\tBOTTOM\tSTATUS\tTAGS")
		for _, s := range catalog.Sections {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Key, s.Title, s.BottomPanel, s.ImplementationStatus, strings.Join(s.Tags, ","))
		}
		return w.Flush()
	},
}

var sectionsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog against the dashboard sections and templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		templates, err := web.Templates()
		if err != nil {
			return err
		}
		problems := catalogProblems(catalog, templates)
		for _, p := range problems {
			fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("section catalog has %d problem(s)", len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "section catalog OK (%d sections, version %s)\n", len(catalog.Sections), catalog.Version)
		return nil
	},
}

func init() {
	sectionsCmd.PersistentFlags().StringVar(&catalogPath, "path", "", "catalog file (default: sections.registry_path from config)")
	sectionsCmd.AddCommand(sectionsListCmd, sectionsValidateCmd)
}

func loadCatalog() (*registry.SectionCatalog, error) {
	path := catalogPath
	if path == "" {
		path = "configs/sections.yaml"
		if cfg, err := loadConfig(); err == nil {
			path = cfg.Sections.RegistryPath
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("section catalog: %w", err)
	}
	return registry.LoadCatalog(path)
}

// catalogProblems combines the catalog's own checks with the sections and templates the dashboard knows.
func catalogProblems(catalog *registry.SectionCatalog, templates *panel.TemplateSet) []string {
	problems := catalog.Validate()

	keys := make([]string, 0, len(panel.AllSections))
	for _, s := range panel.AllSections {
		keys = append(keys, string(s))
	}
	for _, key := range catalog.Missing(keys) {
		problems = append(problems, fmt.Sprintf("section %q is not in the catalog", key))
	}

	for _, entry := range catalog.Sections {
		section, known := panel.ParseSection(entry.Key)
		if !known {
			problems = append(problems, fmt.Sprintf("section %q is unknown to the dashboard", entry.Key))
			continue
		}
		if entry.Template != section.TemplateID() {
			problems = append(problems, fmt.Sprintf("section %q: template %q, dashboard renders %q", entry.Key, entry.Template, section.TemplateID()))
		}
		if entry.BottomPanel != string(panel.BottomPanelFor(section)) {
			problems = append(problems, fmt.Sprintf("section %q: bottom panel %q, dashboard shows %q", entry.Key, entry.BottomPanel, panel.BottomPanelFor(section)))
		}
		if entry.ImplementationStatus == registry.StatusImplemented && !templates.Has(entry.Template) {
			problems = append(problems, fmt.Sprintf("section %q is marked implemented but template %q is missing", entry.Key, entry.Template))
		}
	}
	return problems
}

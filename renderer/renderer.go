package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates is the flat directory of report templates.
var templates = mustSub(templatesFS, "templates")

func mustSub(fsys embed.FS, dir string) fs.ReadDirFS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub.(fs.ReadDirFS)
}

// calculationPartials are the templates the calculation report is assembled from.
var calculationPartials = map[string]string{
	"calculation_title":     "calculation_title.md",
	"calculation_metrics":   "calculation_metrics.md",
	"calculation_followons": "calculation_followons.md",
	"calculation_waterfall": "calculation_waterfall.md",
	"calculation_growth":    "calculation_growth.md",
}

// RenderCalculation renders the Report struct to a markdown string.
func RenderCalculation(r *Report) string {
	return renderTemplate("calculation", "calculation.md", calculationPartials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

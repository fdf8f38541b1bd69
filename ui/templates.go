package ui

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

func parseTemplates() (*template.Template, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

package templates

import (
	"embed"
	"html/template"
	"strings"
)

// FS holds the page templates.
//
//go:embed *.html
var FS embed.FS

// ParseTemplates parses HTML templates from the embedded filesystem.
// It takes a variadic list of template file paths and returns a parsed template
// or an error if parsing fails.
func ParseTemplates(files ...string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	return template.New("").Funcs(funcMap).ParseFS(FS, files...)
}

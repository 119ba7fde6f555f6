// Package templates embeds the HTML pages served by the web service.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse parses every page together with the shared layout
func Parse() (*template.Template, error) {
	return template.New("").ParseFS(files, "*.html")
}

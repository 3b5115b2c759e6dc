package webui

import (
	"embed"
	"html/template"
)

//go:embed dashboard.html debug_index.html
var templateFS embed.FS

var (
	dashboardTemplate = template.Must(template.ParseFS(templateFS, "dashboard.html"))
	debugTemplate     = template.Must(template.ParseFS(templateFS, "debug_index.html"))
)

package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// Render produces the report page laid out for preset. Kingdom names come
// from users and are escaped by html/template.
func Render(v View, preset Preset) ([]byte, error) {
	data := struct {
		View
		Preset string
	}{View: v, Preset: preset.Name}

	var buf bytes.Buffer
	if err := reportTemplate.ExecuteTemplate(&buf, "report.html", data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

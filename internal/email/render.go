package email

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// slotDefaults completa los slots que el plan de follow-up deja abiertos.
var slotDefaults = map[string]string{
	"specific_interest":          "the innovative work being done",
	"relevant_experience":        "scalable systems development",
	"specific_value_proposition": "the challenging technical problems being solved",
	"interviewer_name":           "Recruitment Team",
	"position":                   "Position",
	"company":                    "Company",
	"applicant_name":             "Applicant",
}

var slotPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

var sanitizer = bluemonday.UGCPolicy()

// FillSlots reemplaza {slot} por la variable o su default. Los slots desconocidos
// quedan tal cual.
func FillSlots(tmpl string, vars map[string]string) string {
	return slotPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := vars[name]; ok && strings.TrimSpace(v) != "" {
			return v
		}
		if v, ok := slotDefaults[name]; ok {
			return v
		}
		return m
	})
}

// RenderHTML convierte markdown a HTML saneado.
func RenderHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.Render(p.Parse([]byte(md)), renderer)
	return string(sanitizer.SanitizeBytes(out))
}

// PlainText quita el enfasis markdown del cuerpo para la parte text/plain.
func PlainText(md string) string {
	return strings.ReplaceAll(md, "**", "")
}

package inference

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const extractTemplate = `{{with .System}}SYSTEM:
{{.}}

{{end}}{{with .Guardrail}}{{.}}

{{end}}{{with .Instructions}}{{.}}

{{end}}{{with .Examples}}EXAMPLES:
{{join . "\n"}}

{{end}}SCHEMA:
{{.Schema}}

TEXT:
{{.Text}}`

const repairTemplate = `{{with .System}}SYSTEM:
{{.}}

{{end}}{{with .Guardrail}}{{.}}

{{end}}You previously returned this JSON:
{{.Previous}}

Validation errors:
{{join .Errors "\n"}}

Correct it so it conforms to the following schema (preserve correct fields):
{{.Schema}}`

var (
	extractTmpl = template.Must(template.New("extract").Funcs(template.FuncMap{"join": strings.Join}).Parse(extractTemplate))
	repairTmpl  = template.Must(template.New("repair").Funcs(template.FuncMap{"join": strings.Join}).Parse(repairTemplate))
)

type promptContext struct {
	System       string
	Guardrail    string
	Instructions string
	Examples     []string
	Schema       string
	Text         string
	Previous     string
	Errors       []string
}

// ComposeExtractPrompt renders the extraction prompt for userText.
func ComposeExtractPrompt(userText string, schema map[string]any, opts Options) (string, error) {
	schemaJSON, err := minify(schema)
	if err != nil {
		return "", fmt.Errorf("schema: %w", err)
	}

	return render(extractTmpl, promptContext{
		System:       strings.TrimSpace(opts.System),
		Guardrail:    strings.TrimSpace(opts.Guardrail),
		Instructions: strings.TrimSpace(opts.Instructions),
		Examples:     opts.Examples,
		Schema:       schemaJSON,
		Text:         userText,
	})
}

// ComposeRepairPrompt renders the repair prompt for a previous draft and the
// validation errors it produced.
func ComposeRepairPrompt(previous map[string]any, errs []string, schema map[string]any, opts Options) (string, error) {
	if previous == nil {
		previous = map[string]any{}
	}
	prevJSON, err := minify(previous)
	if err != nil {
		return "", fmt.Errorf("previous draft: %w", err)
	}
	schemaJSON, err := minify(schema)
	if err != nil {
		return "", fmt.Errorf("schema: %w", err)
	}

	return render(repairTmpl, promptContext{
		System:    strings.TrimSpace(opts.System),
		Guardrail: strings.TrimSpace(opts.Guardrail),
		Schema:    schemaJSON,
		Previous:  prevJSON,
		Errors:    errs,
	})
}

func render(t *template.Template, ctx promptContext) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}
	return buf.String(), nil
}

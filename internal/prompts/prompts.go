// Package prompts assembles the prompt bundle passed to every inference call.
// Built-in prompts are embedded; a prompts directory can override any of them.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spboyer/booker/internal/inference"
	"gopkg.in/yaml.v3"
)

//go:embed all:data
var defaults embed.FS

const (
	systemFile    = "schedule/system.md"
	extractFile   = "schedule/extract.md"
	guardrailFile = "_fragments/json_only.md"
	examplesFile  = "schedule/examples.yaml"
)

// Vars are the values available to prompt templates, e.g. {{.Timezone}}.
type Vars struct {
	Timezone string
}

// Load builds the prompt bundle. Files under dir replace the embedded
// defaults one by one; an empty dir uses the defaults only. An optional
// schedule/examples.yaml supplies few-shot examples as a list of JSON strings.
func Load(dir string, vars Vars) (inference.Options, error) {
	var opts inference.Options

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{systemFile, &opts.System},
		{extractFile, &opts.Instructions},
		{guardrailFile, &opts.Guardrail},
	} {
		raw, err := read(dir, f.name)
		if err != nil {
			return inference.Options{}, err
		}
		rendered, err := Render(raw, vars)
		if err != nil {
			return inference.Options{}, fmt.Errorf("prompt %s: %w", f.name, err)
		}
		*f.dst = strings.TrimSpace(rendered)
	}

	examples, err := loadExamples(dir)
	if err != nil {
		return inference.Options{}, err
	}
	opts.Examples = examples

	return opts, nil
}

// Render resolves template expressions in tmpl. Text without template
// delimiters is returned unchanged.
func Render(tmpl string, vars Vars) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}
	return buf.String(), nil
}

func read(dir, name string) (string, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		switch {
		case err == nil:
			return string(b), nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("reading prompt %s: %w", name, err)
		}
	}

	b, err := defaults.ReadFile("data/" + name)
	if err != nil {
		return "", fmt.Errorf("reading built-in prompt %s: %w", name, err)
	}
	return string(b), nil
}

func loadExamples(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}

	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(examplesFile)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading examples: %w", err)
	}

	var examples []string
	if err := yaml.Unmarshal(b, &examples); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", examplesFile, err)
	}

	out := examples[:0]
	for _, ex := range examples {
		if ex = strings.TrimSpace(ex); ex != "" {
			out = append(out, ex)
		}
	}
	return out, nil
}

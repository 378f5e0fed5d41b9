package template

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/agentrun/agentrun/internal/fileutil"
)

// Errors raised by the renderer.
var (
	ErrTemplateDirNotFound = errors.New("template directory not found")
	ErrTemplateNotFound    = errors.New("template not found")
)

// Renderer renders file-backed prompt templates. Templates are plain
// text; no escaping is applied to the rendered output.
type Renderer struct {
	dir string
}

// NewRenderer returns a Renderer over the given template directory.
// It fails if the directory does not exist.
func NewRenderer(dir string) (*Renderer, error) {
	if !fileutil.IsDir(dir) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateDirNotFound, dir)
	}
	return &Renderer{dir: dir}, nil
}

// Render looks up the named template in the renderer's directory and
// executes it against the given context. Variables absent from the
// context render as empty strings.
func (r *Renderer) Render(name string, context map[string]any) (string, error) {
	body, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("failed to read template %q: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}

	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

var templateFuncs template.FuncMap

func init() {
	funcs := template.FuncMap{
		"catLines": func(s string) string {
			s = strings.ReplaceAll(s, "\r\n", " ")
			return strings.ReplaceAll(s, "\n", " ")
		},
		"splitLines": func(s string) []string {
			s = strings.ReplaceAll(s, "\r\n", "\n")
			return strings.Split(s, "\n")
		},
		"merge": func(base map[string]any, v ...map[string]any) map[string]any {
			result := make(map[string]any, len(base))
			for k, val := range base {
				result[k] = val
			}
			for _, m := range v {
				for k, val := range m {
					result[k] = val
				}
			}
			return result
		},
	}

	templateFuncs = template.FuncMap(sprig.TxtFuncMap())
	for k, v := range funcs {
		templateFuncs[k] = v
	}
}

package demo

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/pthm/genview"
	"github.com/pthm/genview/render/pongorender"
)

//go:embed templates/*.html
var templateFS embed.FS

func pongoRenderer(reg *genview.Registry) (*pongorender.Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("demo: templates: %w", err)
	}
	return pongorender.New(
		pongorender.WithFS(sub),
		pongorender.WithGlobals(map[string]any{
			"url": func(name, pk string) string { return urlFor(reg, name, pk) },
		}),
	)
}

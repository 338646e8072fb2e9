package linframe

import (
	"strings"

	"github.com/paveg/linframe/internal/config"
	"github.com/paveg/linframe/internal/render"
)

// VarNamer maps variable ids to display names. A Model is a VarNamer.
type VarNamer = render.VarNamer

// FormatOptions limits rendered output. Zero values mean no limit; a nil
// Namer falls back to the entity's model, then to "x<id>".
type FormatOptions struct {
	MaxLineLen int
	MaxRows    int
	Namer      VarNamer
}

// defaultFormat reads the rendering limits from the global config.
func defaultFormat() FormatOptions {
	c := config.GetGlobalConfig()
	return FormatOptions{MaxLineLen: c.MaxLineLen, MaxRows: c.MaxRows}
}

func (o FormatOptions) render(name string, fallback VarNamer) render.Options {
	namer := o.Namer
	if namer == nil {
		namer = fallback
	}
	return render.Options{
		MaxLineLen: o.MaxLineLen,
		MaxRows:    o.MaxRows,
		Precision:  config.GetGlobalConfig().FloatPrecision,
		Name:       name,
		Namer:      namer,
	}
}

// describe joins a header and body lines the way String methods print.
func describe(header string, lines []string, err error) string {
	if err != nil || len(lines) == 0 {
		return header
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// shapeField renders the dimensions header field.
func shapeField(dims []string, shape map[string]int) render.Field {
	return render.Field{Key: "dimensions", Value: render.Shape(dims, shape)}
}

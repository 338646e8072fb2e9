package linframe

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/paveg/linframe/internal/render"
)

// lpNamer sanitizes model names for the LP format.
type lpNamer struct {
	m *Model
}

func (n lpNamer) VarName(id uint32) string {
	return lpName(n.m.VarName(id))
}

func lpName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// WriteLP writes the model in CPLEX LP format. A constant offset in the
// objective has no LP representation and is left out.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	namer := lpNamer{m: m}
	opts := render.Options{Namer: namer, Label: lpName}

	fmt.Fprintf(bw, "\\ %s\n", lpName(m.name))
	sense, objLine := string(Minimize), "obj: 0"
	if m.objective != nil {
		sense = string(m.objective.sense)
		lines, err := render.Lines(m.objective.terms.VariableTerms(), opts)
		if err != nil {
			return err
		}
		if len(lines) > 0 && lines[0] != "" {
			objLine = "obj: " + lines[0]
		}
	}
	fmt.Fprintf(bw, "%s\n%s\n", sense, objLine)

	bw.WriteString("\ns.t.\n")
	for _, c := range m.constraints {
		copts := opts
		copts.Name = c.name
		lines, err := render.ConstraintLines(c.terms, string(c.sense), copts)
		if err != nil {
			return err
		}
		for _, line := range lines {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}

	bw.WriteString("\nbounds\n")
	for _, v := range m.variables {
		if v.vtype == Binary {
			continue
		}
		for _, id := range v.IDs() {
			bw.WriteString(lpBound(namer.VarName(id), v.lower, v.upper))
			bw.WriteString("\n")
		}
	}

	for _, section := range []struct {
		title string
		vt    VType
	}{{"general", Integer}, {"binary", Binary}} {
		vars := m.variablesOf(section.vt)
		if len(vars) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n%s\n", section.title)
		for _, v := range vars {
			for _, id := range v.IDs() {
				bw.WriteString(namer.VarName(id))
				bw.WriteString("\n")
			}
		}
	}

	bw.WriteString("\nend\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing LP file: %w", err)
	}
	return nil
}

func lpBound(name string, lower, upper float64) string {
	lowerInf, upperInf := math.IsInf(lower, -1), math.IsInf(upper, 1)
	switch {
	case lowerInf && upperInf:
		return name + " free"
	case upperInf:
		return fmt.Sprintf("%s >= %s", name, formatBound(lower))
	case lowerInf:
		return fmt.Sprintf("-inf <= %s <= %s", name, formatBound(upper))
	case lower == upper:
		return fmt.Sprintf("%s = %s", name, formatBound(lower))
	default:
		return fmt.Sprintf("%s <= %s <= %s", formatBound(lower), name, formatBound(upper))
	}
}

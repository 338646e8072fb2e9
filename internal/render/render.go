// Package render turns term tables into text: one line per coordinate,
// object headers and boxed tables.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/paveg/linframe/internal/algebra"
)

// VarNamer maps variable ids to display names.
type VarNamer interface {
	VarName(id uint32) string
}

// DefaultNamer names variable id n "x<n>".
type DefaultNamer struct{}

// VarName implements VarNamer.
func (DefaultNamer) VarName(id uint32) string {
	if id == algebra.ConstTerm {
		return ""
	}
	return "x" + strconv.FormatUint(uint64(id), 10)
}

// Options limits and labels rendered output.
type Options struct {
	MaxLineLen int // 0 means no limit
	MaxRows    int // 0 means no limit
	Precision  int // significant digits; 0 means shortest
	Name       string
	Namer      VarNamer
	Label      func(string) string // rewrites the "name[d1,d2]" prefix
}

func (o Options) namer() VarNamer {
	if o.Namer == nil {
		return DefaultNamer{}
	}
	return o.Namer
}

// FormatCoef writes c as an explicit sign followed by its magnitude.
// Integral magnitudes print without a fraction. With dropOnes a magnitude of
// 1 is left out, so only the sign remains.
func FormatCoef(c float64, dropOnes bool, precision int) string {
	sign := "+"
	if c < 0 {
		sign = "-"
	}
	abs := math.Abs(c)
	switch {
	case dropOnes && abs == 1:
		return sign
	case abs == math.Trunc(abs) && abs < 1e15:
		return sign + strconv.FormatFloat(abs, 'f', 0, 64)
	case precision > 0:
		return sign + strconv.FormatFloat(abs, 'g', precision, 64)
	default:
		return sign + strconv.FormatFloat(abs, 'f', -1, 64)
	}
}

// Lines renders one line per coordinate of t, in coordinate order:
// "[d1,d2]: <coef> <var> <coef> <var> ...". The constant term has an empty
// variable name.
func Lines(t *algebra.Terms, opts Options) ([]string, error) {
	groups, err := coordinateGroups(t, opts.MaxRows)
	if err != nil {
		return nil, err
	}
	namer := opts.namer()
	coefs := t.Coefs().Values()
	ids := t.Vars().Values()

	lines := make([]string, len(groups))
	for i, rows := range groups {
		parts := make([]string, len(rows))
		for j, row := range rows {
			parts[j] = FormatCoef(coefs[row], true, opts.Precision) + " " + namer.VarName(ids[row])
		}
		expr := truncate(strings.Trim(strings.Join(parts, " "), " +"), opts.MaxLineLen)
		lines[i] = withPrefix(t, rows, opts, expr)
	}
	return lines, nil
}

// ConstraintLines renders "lhs <sense> rhs" per coordinate, where lhs holds
// the variable terms and rhs the negated constant term.
func ConstraintLines(t *algebra.Terms, sense string, opts Options) ([]string, error) {
	groups, err := coordinateGroups(t, opts.MaxRows)
	if err != nil {
		return nil, err
	}
	namer := opts.namer()
	coefs := t.Coefs().Values()
	ids := t.Vars().Values()

	lines := make([]string, len(groups))
	for i, rows := range groups {
		var parts []string
		rhs := 0.0
		for _, row := range rows {
			if ids[row] == algebra.ConstTerm {
				rhs -= coefs[row]
				continue
			}
			parts = append(parts, FormatCoef(coefs[row], true, opts.Precision)+" "+namer.VarName(ids[row]))
		}
		lhs := strings.Trim(strings.Join(parts, " "), " +")
		if lhs == "" {
			lhs = "0"
		}
		rhsStr := strings.Trim(FormatCoef(rhs, false, opts.Precision), " +")
		line := truncate(lhs, opts.MaxLineLen) + " " + sense + " " + rhsStr
		lines[i] = withPrefix(t, rows, opts, line)
	}
	return lines, nil
}

// coordinateGroups partitions the rows of t by coordinate, keeping at most
// maxRows groups.
func coordinateGroups(t *algebra.Terms, maxRows int) ([][]int, error) {
	if t.NumTerms() == 0 {
		return nil, nil
	}
	groups, err := t.Frame().Partition(t.Dims()...)
	if err != nil {
		return nil, err
	}
	if maxRows > 0 && len(groups) > maxRows {
		groups = groups[:maxRows]
	}
	return groups, nil
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

func withPrefix(t *algebra.Terms, rows []int, opts Options, body string) string {
	label := opts.Name
	if len(t.Dims()) > 0 {
		label += Coordinate(t, rows[0])
	}
	if label == "" {
		return body
	}
	if opts.Label != nil {
		label = opts.Label(label)
	}
	return label + ": " + body
}

// Coordinate formats the dimension values of row as "[v1,v2]".
func Coordinate(t *algebra.Terms, row int) string {
	dims := t.Dims()
	values := make([]string, len(dims))
	for i, d := range dims {
		col, _ := t.Frame().Column(d)
		values[i] = FormatValue(col.Any(row))
	}
	return "[" + strings.Join(values, ",") + "]"
}

// FormatValue formats one dimension value.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Field is one key=value pair of a header.
type Field struct {
	Key   string
	Value string
}

// Header formats "<kind k=v k=v>".
func Header(kind string, fields ...Field) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(kind)
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		b.WriteString(f.Value)
	}
	b.WriteString(">")
	return b.String()
}

// Shape formats a dimension -> size map in dimension order, "{t: 2, s: 3}".
func Shape(dims []string, shape map[string]int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprintf("%s: %d", d, shape[d])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Table renders the term table as a boxed table with one row per term.
func Table(t *algebra.Terms, opts Options) string {
	namer := opts.namer()
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	// Dimension names are case sensitive.
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault

	dims := t.Dims()
	header := make(table.Row, 0, len(dims)+2)
	for _, d := range dims {
		header = append(header, d)
	}
	tw.AppendHeader(append(header, "coefficient", "variable"))

	df := t.Frame()
	n := df.Len()
	if opts.MaxRows > 0 {
		n = min(n, opts.MaxRows)
	}
	coefs := t.Coefs().Values()
	ids := t.Vars().Values()
	for row := range n {
		r := make(table.Row, 0, len(dims)+2)
		for _, d := range dims {
			col, _ := df.Column(d)
			r = append(r, FormatValue(col.Any(row)))
		}
		tw.AppendRow(append(r, FormatCoef(coefs[row], false, opts.Precision), namer.VarName(ids[row])))
	}
	if n < df.Len() {
		tw.AppendFooter(table.Row{fmt.Sprintf("... %d more terms", df.Len()-n)})
	}
	return tw.Render()
}

package linframe

import (
	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/render"
)

// Sense is the relation of a constraint.
type Sense string

// Constraint senses.
const (
	SenseLE Sense = "<="
	SenseGE Sense = ">="
	SenseEQ Sense = "="
)

// Constraint is an expression compared against zero. It is built as
// lhs - rhs, so the negated constant term is the right-hand side.
type Constraint struct {
	*Expression
	sense Sense
	name  string
}

// Sense returns the relation.
func (c *Constraint) Sense() Sense {
	return c.sense
}

// Name returns the name given by a Model, or "".
func (c *Constraint) Name() string {
	return c.name
}

func (c *Constraint) derive(e *Expression) *Constraint {
	return &Constraint{Expression: e, sense: c.sense, name: c.name}
}

// Filter keeps the coordinates equal to every value in eq.
func (c *Constraint) Filter(eq map[string]any) (*Constraint, error) {
	e, err := c.Expression.Filter(eq)
	if err != nil {
		return nil, err
	}
	return c.derive(e), nil
}

// Within keeps the coordinates whose values on the dimensions shared with
// set appear in set.
func (c *Constraint) Within(set Expressionable) (*Constraint, error) {
	e, err := c.Expression.Within(set)
	if err != nil {
		return nil, err
	}
	return c.derive(e), nil
}

// Lines renders "lhs <sense> rhs" per coordinate, variable terms on the
// left and the negated constant on the right.
func (c *Constraint) Lines(opts FormatOptions) ([]string, error) {
	return render.ConstraintLines(c.terms, string(c.sense), opts.render(c.name, c.namer))
}

// String returns a header followed by the first lines of the constraint.
func (c *Constraint) String() string {
	var fields []render.Field
	if c.name != "" {
		fields = append(fields, render.Field{Key: "name", Value: c.name})
	}
	fields = append(fields, render.Field{Key: "sense", Value: "'" + string(c.sense) + "'"})
	lines, err := c.Lines(defaultFormat())
	return describe(c.header("Constraint", fields...), lines, err)
}

// ObjSense is the optimization direction.
type ObjSense string

// Objective senses.
const (
	Minimize ObjSense = "minimize"
	Maximize ObjSense = "maximize"
)

// Objective is a dimensionless expression to minimize or maximize.
type Objective struct {
	*Expression
	sense ObjSense
}

// NewObjective builds an objective from a dimensionless expression.
func NewObjective(e Expressionable, sense ObjSense) (*Objective, error) {
	expr := e.ToExpression()
	if dims := expr.Dimensions(); len(dims) > 0 {
		return nil, errors.NewDomainError("Objective",
			"objective cannot have any dimensions as it must be a single expression", dims...)
	}
	if sense != Minimize && sense != Maximize {
		return nil, errors.NewDomainError("Objective", "sense must be minimize or maximize")
	}
	return &Objective{Expression: expr, sense: sense}, nil
}

// Sense returns the optimization direction.
func (o *Objective) Sense() ObjSense {
	return o.sense
}

// Lines renders "<sense>: <terms>".
func (o *Objective) Lines(opts FormatOptions) ([]string, error) {
	return render.Lines(o.terms, opts.render(string(o.sense), o.namer))
}

// String returns a header followed by the objective.
func (o *Objective) String() string {
	lines, err := o.Lines(defaultFormat())
	return describe(o.header("Objective", render.Field{Key: "sense", Value: string(o.sense)}), lines, err)
}

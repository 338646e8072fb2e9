package linframe

import (
	"fmt"
	"slices"

	"github.com/paveg/linframe/internal/errors"
	"github.com/paveg/linframe/internal/render"
	"github.com/paveg/linframe/internal/validation"
)

// Model is a registry of named variables, constraints and one objective.
// It owns the Allocator its variables draw ids from and names variables
// "name[v1,v2]" when rendering.
type Model struct {
	name        string
	alloc       *Allocator
	variables   []*Variable
	constraints []*Constraint
	objective   *Objective
	names       map[string]bool
	varNames    map[uint32]string
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:     name,
		alloc:    NewAllocator(),
		names:    make(map[string]bool),
		varNames: make(map[uint32]string),
	}
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// Allocator returns the allocator variables of this model draw ids from.
func (m *Model) Allocator() *Allocator {
	return m.alloc
}

// VarName implements VarNamer.
func (m *Model) VarName(id uint32) string {
	if name, ok := m.varNames[id]; ok {
		return name
	}
	return render.DefaultNamer{}.VarName(id)
}

func (m *Model) claim(op, name string) error {
	if err := validation.ValidateName(name, op); err != nil {
		return err
	}
	if m.names[name] {
		return errors.NewStructuralError(op, fmt.Sprintf("cannot create %s since it was already created", name))
	}
	m.names[name] = true
	return nil
}

// NewVariable creates a variable from the model's allocator and registers
// it under name.
func (m *Model) NewVariable(name string, opts ...VariableOption) (*Variable, error) {
	if err := validation.ValidateName(name, "NewVariable"); err != nil {
		return nil, err
	}
	v, err := NewVariable(m.alloc, opts...)
	if err != nil {
		return nil, err
	}
	return m.AddVariable(name, v)
}

// AddVariable registers v under name and returns the named copy. Its ids
// must not belong to another variable of the model.
func (m *Model) AddVariable(name string, v *Variable) (*Variable, error) {
	ids := v.IDs()
	for _, id := range ids {
		if _, taken := m.varNames[id]; taken {
			return nil, errors.NewStructuralError("AddVariable",
				fmt.Sprintf("variable id %d already belongs to %s", id, m.varNames[id]))
		}
	}
	if err := m.claim("AddVariable", name); err != nil {
		return nil, err
	}

	named := v.with(v.derive(v.terms))
	named.name = name
	named.namer = m
	dimensioned := len(v.terms.Dims()) > 0
	for row, id := range ids {
		if dimensioned {
			m.varNames[id] = name + render.Coordinate(v.terms, row)
		} else {
			m.varNames[id] = name
		}
	}
	m.variables = append(m.variables, named)
	return named, nil
}

// AddConstraint registers c under name and returns the named copy.
func (m *Model) AddConstraint(name string, c *Constraint) (*Constraint, error) {
	if err := m.claim("AddConstraint", name); err != nil {
		return nil, err
	}
	named := c.derive(c.Expression.derive(c.terms))
	named.name = name
	named.namer = m
	m.constraints = append(m.constraints, named)
	return named, nil
}

// Minimize sets the objective to minimize e.
func (m *Model) Minimize(e Expressionable) error {
	return m.setObjective(e, Minimize)
}

// Maximize sets the objective to maximize e.
func (m *Model) Maximize(e Expressionable) error {
	return m.setObjective(e, Maximize)
}

func (m *Model) setObjective(e Expressionable, sense ObjSense) error {
	if m.objective != nil {
		return errors.NewStructuralError("Objective", "cannot create more than one objective")
	}
	obj, err := NewObjective(e, sense)
	if err != nil {
		return err
	}
	obj.Expression = obj.derive(obj.terms)
	obj.namer = m
	m.objective = obj
	return nil
}

// Variables returns the registered variables in registration order.
func (m *Model) Variables() []*Variable {
	return slices.Clone(m.variables)
}

// Constraints returns the registered constraints in registration order.
func (m *Model) Constraints() []*Constraint {
	return slices.Clone(m.constraints)
}

// Objective returns the objective, or nil.
func (m *Model) Objective() *Objective {
	return m.objective
}

// Variable returns the variable registered under name.
func (m *Model) Variable(name string) (*Variable, bool) {
	i := slices.IndexFunc(m.variables, func(v *Variable) bool { return v.name == name })
	if i < 0 {
		return nil, false
	}
	return m.variables[i], true
}

// Constraint returns the constraint registered under name.
func (m *Model) Constraint(name string) (*Constraint, bool) {
	i := slices.IndexFunc(m.constraints, func(c *Constraint) bool { return c.name == name })
	if i < 0 {
		return nil, false
	}
	return m.constraints[i], true
}

func (m *Model) variablesOf(vt VType) []*Variable {
	var out []*Variable
	for _, v := range m.variables {
		if v.vtype == vt {
			out = append(out, v)
		}
	}
	return out
}

// String summarizes the model.
func (m *Model) String() string {
	obj := "no"
	if m.objective != nil {
		obj = "1"
	}
	return fmt.Sprintf("Model '%s' (%d vars, %d constrs, %s obj)", m.name, len(m.variables), len(m.constraints), obj)
}

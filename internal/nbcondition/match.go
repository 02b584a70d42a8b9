package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// matchLogic implements `~"regex"` (spec: "evaluates a regex against
// the string value of the left term: Unknown if operand Unknown, False
// if operand not a string, True/False per regex match"). Grounded on
// evalMatch; Go's stdlib regexp (RE2) replaces PCRE, noted in DESIGN.md.
type matchLogic struct {
	pattern *nbobject.Regex
}

func (m *matchLogic) TypeName() string { return "~\"" + m.pattern.Pattern() + "\"" }
func (m *matchLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := nbcell.OperandValue(c.Operand(0))
	if nbobject.IsUnknownOrDisabled(left) {
		return nbobject.Object(nbobject.Unknown)
	}
	s, ok := asText(left)
	if !ok {
		return nbobject.Object(nbobject.False)
	}
	return nbobject.BoolObject(m.pattern.MatchString(s))
}
func (m *matchLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (m *matchLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

// Match builds the `~"regex"` condition against operand (typically a
// term cell whose value resolves to a string).
func Match(operand nbobject.Object, pattern *nbobject.Regex) *nbcell.Cell {
	return nbcell.New(&matchLogic{pattern: pattern}, operand)
}

package nbcell

import (
	"nodebrain/internal/nbavl"
	"nodebrain/internal/nbobject"
)

// Node is a context's definition: the data model's "node" Object (spec
// §3). It owns the child term glossary (an AVL tree keyed by name,
// spec Component F) and the optional oracle "source" used to resolve
// Unknown terms.
type Node struct {
	Owner    string
	Source   string // "<filename" or a shell command; empty if none
	Children *nbavl.Tree[string, *Term]
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NewNode creates an empty node (a fresh context).
func NewNode(owner, source string) *Node {
	return &Node{
		Owner:    owner,
		Source:   source,
		Children: nbavl.New[string, *Term](stringCompare),
	}
}

func (n *Node) TypeName() string        { return "node" }
func (n *Node) Value() nbobject.Object  { return n }

// termLogic is the Cell Logic for every Term: its Eval transitively
// resolves the current definition's value (spec §3: "The term's cached
// value equals definition.value, transitively resolved for cells").
type termLogic struct {
	term *Term
}

func (tl *termLogic) TypeName() string { return "term" }

func (tl *termLogic) Eval(c *Cell) nbobject.Object {
	def := tl.term.definition
	if defCell, ok := def.(*Cell); ok {
		return OperandValue(defCell)
	}
	return def.Value()
}

func (tl *termLogic) Activate(c *Cell) {
	if defCell, ok := tl.term.definition.(*Cell); ok {
		Enable(defCell, c)
	}
}

func (tl *termLogic) Deactivate(c *Cell) {
	if defCell, ok := tl.term.definition.(*Cell); ok {
		Disable(defCell, c)
	}
}

// NeverDisabled implements the neverDisabled marker: "Terms are exempt
// from becoming Disabled" (spec §4.3).
func (tl *termLogic) NeverDisabled() bool { return true }

func (tl *termLogic) Print(c *Cell) string { return tl.term.name }

// Term is a named cell that aliases a definition (spec §3).
type Term struct {
	*Cell
	name       string
	parent     *Term // the context term this term is defined within; nil for a root
	definition nbobject.Object
}

// NewTerm creates a term named name within parent (nil for the root
// context), initially bound to nbobject.Unknown.
func NewTerm(name string, parent *Term) *Term {
	t := &Term{name: name, parent: parent, definition: nbobject.Unknown}
	t.Cell = New(nil)
	t.Cell.Logic = &termLogic{term: t}
	t.Cell.value = nbobject.Unknown
	return t
}

func (t *Term) Name() string   { return t.name }
func (t *Term) Parent() *Term  { return t.parent }

// Definition returns the term's current definition Object (not its
// resolved value).
func (t *Term) Definition() nbobject.Object { return t.definition }

// IsContext reports whether this term's definition is a Node, i.e.
// whether the term can host a child glossary (spec §3: "A Context is a
// term whose definition is a node").
func (t *Term) IsContext() bool {
	_, ok := t.definition.(*Node)
	return ok
}

// Node returns the term's definition as a *Node and true if IsContext,
// else (nil, false).
func (t *Term) Node() (*Node, bool) {
	n, ok := t.definition.(*Node)
	return n, ok
}

// AssignDefinition implements spec §4.6's term-reassignment algorithm:
// disable the old definition subscription, drop the old reference, grab
// the new one, raise the term's level if the new definition's level is
// at least as high, and — if the term is currently enabled — subscribe
// to the new definition and publish the resulting value change.
func (t *Term) AssignDefinition(newDef nbobject.Object, sched Scheduler) error {
	old := t.definition
	enabled := t.Cell.subs.Len() > 0

	if oldCell, ok := old.(*Cell); ok {
		if enabled {
			Disable(oldCell, t.Cell)
		}
		oldCell.Drop()
	}
	if newCell, ok := newDef.(*Cell); ok {
		newCell.Grab()
		if newCell.level >= t.Cell.level {
			if err := RaiseLevel(t.Cell, newCell.level+1); err != nil {
				return err
			}
		}
	}

	t.definition = newDef
	oldValue := t.Cell.value

	if enabled {
		if newCell, ok := newDef.(*Cell); ok {
			Enable(newCell, t.Cell)
		}
	}
	newValue := t.Cell.Logic.Eval(t.Cell)
	t.Cell.SetValue(newValue)

	if enabled && newValue != oldValue {
		Publish(t.Cell, sched)
	}
	return nil
}

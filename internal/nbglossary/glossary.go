// Package nbglossary implements qualified-name term resolution (spec
// Component F): the find_here/find_in_scope/find/create family of
// lookups over a context's AVL-indexed child glossary (nbcell.Node),
// plus on-demand resolution of Unknown term definitions via an external
// source.
//
// Grounded on original_source/lib/nbterm.c's nbTermFindHere/
// nbTermFindInScope/nbTermFind/nbTermFindDown/nbTermCreate family for the
// sigil and dot-qualifier semantics; the search-path/caching shape
// follows the teacher's internal/vm/module_loader.go (ModuleLoader:
// resolve-then-cache, explicit search roots passed in rather than held as
// package globals, matching Design Notes' "collect globals into a
// context struct"). The per-context child lookup itself is the
// nbcell.Node.Children AVL tree, styled after joshuapare-hivekit's
// hive/namecache package naming (pack example, not the teacher).
package nbglossary

import (
	"strings"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbobject"
)

// Roots groups the well-known starting contexts a qualified name's sigil
// can select (spec §4.6): `_` selects Root, `@` selects Local, `%`
// selects Sym. An Engine owns exactly one Roots and threads it through
// every glossary call; there is no package-level global.
type Roots struct {
	Root  *nbcell.Term
	Local *nbcell.Term
	Sym   *nbcell.Term
}

// FindHere performs a single-level lookup of name within context's own
// glossary (spec: find_here). A nil context, a non-context term, or a
// missing child all return nil.
func FindHere(context *nbcell.Term, name string) *nbcell.Term {
	if context == nil {
		return nil
	}
	node, ok := context.Node()
	if !ok {
		return nil
	}
	n := node.Children.Find(name)
	if n == nil {
		return nil
	}
	return n.Val()
}

// FindInScope walks up the context chain from context, trying FindHere
// at each level until name is found or the chain is exhausted (spec:
// find_in_scope).
func FindInScope(context *nbcell.Term, name string) *nbcell.Term {
	for ctx := context; ctx != nil; ctx = ctx.Parent() {
		if t := FindHere(ctx, name); t != nil {
			return t
		}
	}
	return nil
}

// climbDots consumes a leading run of dots from qualifier (spec:
// "leading . = current/ancestor relative to context"): a lone dot leaves
// context unchanged; each additional dot climbs one more parent. It
// returns the context reached and the suffix following the dots.
func climbDots(context *nbcell.Term, qualifier string) (*nbcell.Term, string) {
	i := 1
	for i < len(qualifier) && qualifier[i] == '.' {
		if context == nil {
			return nil, ""
		}
		context = context.Parent()
		i++
	}
	return context, qualifier[i:]
}

// splitFirst splits a dotted name at its first '.', returning the head
// component and the remaining tail (empty if there is none).
func splitFirst(name string) (head, tail string) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// Find resolves a qualified name per spec §4.6: the leading component
// selects a starting scope — by the `%` sigil prefix, by ancestor-climb
// (leading dots), or by an ordinary up-the-chain search — and every
// subsequent dot-separated component is a direct find_here descent from
// there. `_` and `@` are recognized only as the whole name, returning
// the root or local context itself; a longer name starting with `_` or
// `@` is searched for as an ordinary name.
func Find(context *nbcell.Term, roots Roots, name string) *nbcell.Term {
	if name == "" {
		return nil
	}

	var start *nbcell.Term
	var rest string

	switch {
	case name[0] == '.':
		start, rest = climbDots(context, name)
	case name == "_":
		return roots.Root
	case name == "@":
		return roots.Local
	case strings.HasPrefix(name, "%"):
		head, tail := splitFirst(name[1:])
		start = FindInScope(roots.Sym, head)
		rest = tail
	default:
		head, tail := splitFirst(name)
		start = FindInScope(context, head)
		rest = tail
	}

	for start != nil && rest != "" {
		head, tail := splitFirst(rest)
		start = FindHere(start, head)
		rest = tail
	}
	return start
}

// resolveOrCreateChild finds name within parent's glossary, creating an
// Unknown-defined placeholder term if absent. If parent is not yet a
// context but has never been assigned a real definition (still Unknown),
// it is promoted to an empty context on the fly so it can host the new
// child — this is how Create's "missing intermediate terms" come to
// exist. Promoting a term that already holds a genuine non-context
// definition is refused as a user error.
func resolveOrCreateChild(parent *nbcell.Term, name string, sched nbcell.Scheduler) (*nbcell.Term, error) {
	if parent == nil {
		return nil, nberrors.Userf("cannot create term: missing intermediate context")
	}
	if !parent.IsContext() {
		if parent.Definition() != nbobject.Object(nbobject.Unknown) {
			return nil, nberrors.Userf("cannot create term under non-context term").WithTerm(parent.Name())
		}
		if err := parent.AssignDefinition(nbcell.NewNode(parent.Name(), ""), sched); err != nil {
			return nil, err
		}
	}
	node, _ := parent.Node()
	if found := node.Children.Find(name); found != nil {
		return found.Val(), nil
	}
	child := nbcell.NewTerm(name, parent)
	node.Children.Insert(name, child)
	return child, nil
}

// Create resolves dotted_name within context, creating any missing
// intermediate terms (installed as Unknown placeholders promoted to
// empty contexts as needed) and finally installing or rebinding the leaf
// term's definition to def (spec: create).
func Create(context *nbcell.Term, roots Roots, name string, def nbobject.Object, sched nbcell.Scheduler) (*nbcell.Term, error) {
	if name == "" {
		return nil, nberrors.Userf("empty term name")
	}

	var start *nbcell.Term
	var rest string
	var err error

	switch {
	case name[0] == '.':
		start, rest = climbDots(context, name)
		if start == nil {
			return nil, nberrors.Userf("qualifier climbs above root").WithTerm(name)
		}
		if rest == "" {
			return nil, nberrors.Userf("qualifier names no term").WithTerm(name)
		}
	case name == "_":
		if roots.Root == nil {
			return nil, nberrors.Userf("no root context configured")
		}
		return roots.Root, roots.Root.AssignDefinition(def, sched)
	case name == "@":
		if roots.Local == nil {
			return nil, nberrors.Userf("no local context configured")
		}
		return roots.Local, roots.Local.AssignDefinition(def, sched)
	case strings.HasPrefix(name, "%"):
		head, tail := splitFirst(name[1:])
		start, err = resolveOrCreateChild(roots.Sym, head, sched)
		rest = tail
	default:
		head, tail := splitFirst(name)
		start, err = resolveOrCreateChild(context, head, sched)
		rest = tail
	}
	if err != nil {
		return nil, err
	}

	for rest != "" {
		head, tail := splitFirst(rest)
		start, err = resolveOrCreateChild(start, head, sched)
		if err != nil {
			return nil, err
		}
		rest = tail
	}
	if start == nil {
		return nil, nberrors.Userf("cannot create term").WithTerm(name)
	}
	if err := start.AssignDefinition(def, sched); err != nil {
		return nil, err
	}
	return start, nil
}

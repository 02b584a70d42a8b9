package nbglossary

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// Prompter is consulted when a term's definition is Unknown and no
// ancestor context carries a source (spec §4.6: "the engine may
// optionally prompt interactively"). An Engine with no interactive host
// attached passes a nil Prompter, leaving the value Unknown — matching
// original_source/lib/nbterm.c's termResolve falling through to a 'W'
// warning when nb_opt_prompt is off.
type Prompter interface {
	Ask(termName string) (string, bool)
}

// sourceContext walks up from term's parent looking for a context node
// whose Source string is set (spec: "walk up contexts until one with a
// source string is found"), mirroring termResolve's ascent loop.
func sourceContext(term *nbcell.Term) (*nbcell.Term, *nbcell.Node) {
	for ctx := term.Parent(); ctx != nil; ctx = ctx.Parent() {
		if node, ok := ctx.Node(); ok && node.Source != "" {
			return ctx, node
		}
	}
	return nil, nil
}

// consultSource invokes a node's source as either a file read (a leading
// '<' names the file, spec's termAskFile) or a shell command (termAskCommand),
// returning the trimmed text response.
func consultSource(source string) (string, error) {
	if strings.HasPrefix(source, "<") {
		data, err := os.ReadFile(source[1:])
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	out, err := exec.Command("sh", "-c", source).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseResolved turns a source's or a prompter's raw text response into
// an Object: a parseable float64 interns as a Real (so resolved booleans
// and numeric sensor readings round-trip correctly), anything else interns
// as a String.
func parseResolved(heap *nbobject.Heap, text string) nbobject.Object {
	if text == "" {
		return nbobject.Object(nbobject.Unknown)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return heap.InternReal(f)
	}
	return heap.InternString(text)
}

// ResolveUnknown implements spec §4.6's on-demand resolution of a term
// whose definition is the Unknown sentinel: find the nearest ancestor
// context with a source, consult it, parse the response, and assign it
// as the term's new definition. If no ancestor has a source, prompter
// (which may be nil) is offered the chance to supply a value
// interactively; otherwise the term is left Unknown, matching
// original_source's "No consultant for %s" warning path.
func ResolveUnknown(term *nbcell.Term, heap *nbobject.Heap, sched nbcell.Scheduler, prompter Prompter) error {
	if term.Definition() != nbobject.Object(nbobject.Unknown) {
		return nil
	}

	ctx, node := sourceContext(term)
	var text string
	if node == nil {
		if prompter == nil {
			return nil
		}
		answer, ok := prompter.Ask(term.Name())
		if !ok {
			return nil
		}
		text = answer
	} else {
		resolved, err := consultSource(node.Source)
		if err != nil {
			return nil
		}
		text = resolved
		_ = ctx // the context itself isn't otherwise needed once source is read
	}

	return term.AssignDefinition(parseResolved(heap, text), sched)
}

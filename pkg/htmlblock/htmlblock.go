// Package htmlblock tags lesson HTML with stable block identifiers so that
// per-block progress can be tracked. Every top-level block element receives a
// data-block-id attribute in document order; elements that already carry one
// keep it, which makes tagging idempotent across lesson edits.
package htmlblock

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is the attribute that identifies a lesson block.
const Attr = "data-block-id"

// blockAtoms are the top-level elements that count as lesson blocks.
var blockAtoms = map[atom.Atom]bool{
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.P:          true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Table:      true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Form:       true,
}

// InjectIDs parses a lesson HTML fragment, assigns a data-block-id to every
// untagged top-level block element, and returns the rewritten fragment
// together with all block IDs in document order. Existing IDs are preserved;
// new ones are numbered block-1, block-2, ... skipping numbers already taken.
func InjectIDs(fragment string) (string, []string, error) {
	body, err := parseFragment(fragment)
	if err != nil {
		return "", nil, err
	}

	used := make(map[string]bool)
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if id, ok := blockID(n); ok {
			used[id] = true
		}
	}

	var ids []string
	next := 1
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || !blockAtoms[n.DataAtom] {
			continue
		}
		id, ok := blockID(n)
		if !ok {
			for {
				id = fmt.Sprintf("block-%d", next)
				next++
				if !used[id] {
					break
				}
			}
			used[id] = true
			n.Attr = append(n.Attr, html.Attribute{Key: Attr, Val: id})
		}
		ids = append(ids, id)
	}

	var sb strings.Builder
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&sb, n); err != nil {
			return "", nil, err
		}
	}
	return sb.String(), ids, nil
}

// ExtractIDs returns the block IDs of a fragment without rewriting it.
func ExtractIDs(fragment string) ([]string, error) {
	body, err := parseFragment(fragment)
	if err != nil {
		return nil, err
	}
	var ids []string
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if id, ok := blockID(n); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseFragment(fragment string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("failed to parse lesson html: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return nil, fmt.Errorf("failed to parse lesson html: no body")
	}
	return body, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func blockID(n *html.Node) (string, bool) {
	if n.Type != html.ElementNode || !blockAtoms[n.DataAtom] {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == Attr && a.Val != "" {
			return a.Val, true
		}
	}
	return "", false
}

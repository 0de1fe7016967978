package taxonomy

import (
	"errors"
	"sort"

	"smartcents/internal/core"
)

// ErrSkipChildren can be returned by a WalkFunc to skip a node's subtree.
var ErrSkipChildren = errors.New("skip children")

// Node is one category in the forest. Children are ordered by name then id.
type Node struct {
	Category core.Category `json:"category"`
	Depth    int           `json:"depth"`
	Children []*Node       `json:"children,omitempty"`
}

type WalkFunc func(n *Node) error

func index(cats []core.Category) map[string]core.Category {
	byID := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return byID
}

// isAncestor reports whether candidate appears on the parent chain starting
// at from (inclusive). Corrupt chains that loop without reaching candidate
// stop at the first repeated id.
func isAncestor(candidate, from string, byID map[string]core.Category) bool {
	visited := make(map[string]bool)
	for id := from; id != ""; {
		if id == candidate {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true

		c, ok := byID[id]
		if !ok || c.ParentID == nil {
			return false
		}
		id = *c.ParentID
	}
	return false
}

// BuildForest arranges a flat category list into trees. Roots are the
// categories with no parent or with a parent that is not in the list.
// Categories only reachable through a cycle are promoted to roots, so every
// input category appears exactly once in the result.
func BuildForest(cats []core.Category) []*Node {
	byID := index(cats)

	ordered := append([]core.Category(nil), cats...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})

	childrenOf := make(map[string][]string, len(cats))
	var rootIDs []string
	for _, c := range ordered {
		if c.IsRoot() {
			rootIDs = append(rootIDs, c.ID)
			continue
		}
		if _, ok := byID[*c.ParentID]; !ok {
			rootIDs = append(rootIDs, c.ID)
			continue
		}
		childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c.ID)
	}

	visited := make(map[string]bool, len(cats))
	var attach func(id string, depth int) *Node
	attach = func(id string, depth int) *Node {
		visited[id] = true
		n := &Node{Category: byID[id], Depth: depth}
		for _, childID := range childrenOf[id] {
			if visited[childID] {
				continue
			}
			n.Children = append(n.Children, attach(childID, depth+1))
		}
		return n
	}

	forest := make([]*Node, 0, len(rootIDs))
	for _, id := range rootIDs {
		if !visited[id] {
			forest = append(forest, attach(id, 0))
		}
	}

	// anything left sits on a cycle
	for _, c := range ordered {
		if !visited[c.ID] {
			forest = append(forest, attach(c.ID, 0))
		}
	}
	return forest
}

// Walk visits the forest depth-first, parents before children.
func Walk(forest []*Node, fn WalkFunc) error {
	for _, n := range forest {
		err := fn(n)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
		if err := Walk(n.Children, fn); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns the forest in Walk order.
func Flatten(forest []*Node) []*Node {
	var out []*Node
	_ = Walk(forest, func(n *Node) error {
		out = append(out, n)
		return nil
	})
	return out
}

// Package layer models a document's layer tree and selects the groups that
// the preparation actions work on.
package layer

import "strings"

// Classification suffixes. Matching is exact and case-sensitive.
const (
	SWIPE = "_SWIPE"
	MERGE = "_MERGE"
)

// Suffixes lists every classification suffix.
var Suffixes = []string{SWIPE, MERGE}

// FindLayers walks the tree rooted at roots and returns every group whose
// name ends with SWIPE or MERGE, at any depth. Matches inside a group are
// appended before the group itself is evaluated, so a matching parent comes
// after its matching descendants.
func FindLayers(roots []*Node) []*Node {
	var found []*Node
	for _, n := range roots {
		if len(n.Children) > 0 {
			found = append(found, FindLayers(n.Children)...)
		}
		if IsCandidate(n) {
			found = append(found, n)
		}
	}
	return found
}

// IsCandidate reports whether n is a group carrying a classification suffix.
func IsCandidate(n *Node) bool {
	return n.IsGroup() && MatchSuffix(n.Name) != ""
}

// MatchSuffix returns the classification suffix name ends with, or "".
func MatchSuffix(name string) string {
	for _, s := range Suffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

// StripSuffixes removes the first occurrence of SWIPE and then the first
// occurrence of MERGE from name. Names carrying neither are returned as is.
func StripSuffixes(name string) string {
	name = strings.Replace(name, SWIPE, "", 1)
	return strings.Replace(name, MERGE, "", 1)
}

// Walk visits every node in pre-order, passing its depth (0 for roots).
// Returning false from fn skips the node's children.
func Walk(roots []*Node, fn func(n *Node, depth int) bool) {
	walk(roots, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Find returns the node with the given ID, or nil.
func Find(roots []*Node, id string) *Node {
	var hit *Node
	Walk(roots, func(n *Node, _ int) bool {
		if hit != nil {
			return false
		}
		if n.ID == id {
			hit = n
			return false
		}
		return true
	})
	return hit
}

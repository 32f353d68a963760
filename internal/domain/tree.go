package domain

import (
	"encoding/json"
	"fmt"
)

// TreeNode is one node of an author's document tree: either a leaf
// referencing a document, or a branch holding named children. The two
// shapes are told apart by the presence of "children" in the JSON.
type TreeNode struct {
	ID       uint64
	Recycled bool
	Children map[string]*TreeNode
}

// IsLeaf reports whether the node references a document.
func (n *TreeNode) IsLeaf() bool {
	return n.Children == nil
}

// NewBranch returns an empty internal node.
func NewBranch() *TreeNode {
	return &TreeNode{Children: map[string]*TreeNode{}}
}

type leafJSON struct {
	ID       uint64 `json:"id"`
	Recycled bool   `json:"recycled"`
}

type branchJSON struct {
	Children map[string]*TreeNode `json:"children"`
}

// MarshalJSON emits exactly {id, recycled} for leaves and {children}
// for branches. Map keys marshal in sorted order, so equal trees
// always serialize to identical bytes.
func (n *TreeNode) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(leafJSON{ID: n.ID, Recycled: n.Recycled})
	}
	return json.Marshal(branchJSON{Children: n.Children})
}

// UnmarshalJSON accepts either node shape. A "children" key, even an
// empty one, makes the node a branch; anything else is read as a leaf
// and unknown fields are dropped.
func (n *TreeNode) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       uint64               `json:"id"`
		Recycled bool                 `json:"recycled"`
		Children map[string]*TreeNode `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID = raw.ID
	n.Recycled = raw.Recycled
	n.Children = raw.Children
	return nil
}

// ParseTree decodes the stored or client-supplied tree text.
// An empty string yields an empty root branch.
func ParseTree(content string) (*TreeNode, error) {
	if content == "" {
		return NewBranch(), nil
	}
	var root TreeNode
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("parse doc tree: %w", err)
	}
	if root.Children == nil {
		root.Children = map[string]*TreeNode{}
	}
	return &root, nil
}

// Serialize encodes the tree for storage.
func (n *TreeNode) Serialize() (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LeafIDs collects the document ids reachable as leaves.
func (n *TreeNode) LeafIDs() map[uint64]bool {
	ids := map[uint64]bool{}
	n.walkLeaves(func(leaf *TreeNode) {
		ids[leaf.ID] = true
	})
	return ids
}

func (n *TreeNode) walkLeaves(visit func(*TreeNode)) {
	if n.IsLeaf() {
		visit(n)
		return
	}
	for _, child := range n.Children {
		child.walkLeaves(visit)
	}
}

// Trim strips every leaf down to exactly {id, recycled} and clears
// stray document fields off branches, keeping the hierarchy as-is.
// The marshaler already drops unknown client fields; Trim guards the
// typed fields against shape mixing.
func (n *TreeNode) Trim() {
	if n.IsLeaf() {
		return
	}
	n.ID = 0
	n.Recycled = false
	for _, child := range n.Children {
		child.Trim()
	}
}

// Reconcile inserts a leaf for every accessible document missing from
// the tree, keyed by key(doc) at the root. Leaves for documents the
// author lost access to are never removed; pruning is left to the
// client. Returns whether the tree changed.
func (n *TreeNode) Reconcile(accessible []Doc, key func(Doc) string) bool {
	present := n.LeafIDs()
	changed := false
	for _, doc := range accessible {
		if present[doc.ID] {
			continue
		}
		n.Children[key(doc)] = &TreeNode{ID: doc.ID, Recycled: doc.Recycled}
		changed = true
	}
	return changed
}

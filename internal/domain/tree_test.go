package domain

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(doc Doc) string {
	return "k" + strconv.FormatUint(doc.ID, 10)
}

func TestParseTree_Empty(t *testing.T) {
	root, err := ParseTree("")
	require.NoError(t, err)
	assert.False(t, root.IsLeaf())
	assert.Empty(t, root.Children)
}

func TestTree_RoundTrip(t *testing.T) {
	root := NewBranch()
	root.Children["folder"] = &TreeNode{Children: map[string]*TreeNode{
		"a": {ID: 1},
		"b": {ID: 2, Recycled: true},
	}}
	root.Children["c"] = &TreeNode{ID: 3}

	content, err := root.Serialize()
	require.NoError(t, err)

	parsed, err := ParseTree(content)
	require.NoError(t, err)

	again, err := parsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, content, again)

	ids := parsed.LeafIDs()
	assert.Equal(t, map[uint64]bool{1: true, 2: true, 3: true}, ids)
}

func TestTree_EmptyBranchStaysBranch(t *testing.T) {
	root := NewBranch()
	root.Children["empty"] = NewBranch()

	content, err := root.Serialize()
	require.NoError(t, err)

	parsed, err := ParseTree(content)
	require.NoError(t, err)
	assert.False(t, parsed.Children["empty"].IsLeaf())
}

func TestTree_LeafSerializesExactShape(t *testing.T) {
	leaf := &TreeNode{ID: 7}
	content, err := leaf.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"recycled":false}`, content)
}

func TestReconcile_AddsMissingLeaves(t *testing.T) {
	root := NewBranch()
	root.Children["existing"] = &TreeNode{ID: 1}

	accessible := []Doc{{ID: 1}, {ID: 2, Label: "notes"}, {ID: 3, Recycled: true}}
	changed := root.Reconcile(accessible, testKey)

	assert.True(t, changed)
	assert.Equal(t, map[uint64]bool{1: true, 2: true, 3: true}, root.LeafIDs())
	assert.True(t, root.Children["k3"].Recycled)
	// the leaf already present was not duplicated
	_, duplicated := root.Children["k1"]
	assert.False(t, duplicated)
}

func TestReconcile_Idempotent(t *testing.T) {
	root := NewBranch()
	accessible := []Doc{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}}

	changed := root.Reconcile(accessible, testKey)
	assert.True(t, changed)
	first, err := root.Serialize()
	require.NoError(t, err)

	changed = root.Reconcile(accessible, testKey)
	assert.False(t, changed)
	second, err := root.Serialize()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconcile_NeverRemovesStaleLeaves(t *testing.T) {
	root := NewBranch()
	root.Children["stale"] = &TreeNode{ID: 99}

	root.Reconcile([]Doc{{ID: 1}}, testKey)

	ids := root.LeafIDs()
	assert.True(t, ids[99], "stale leaf must persist until the client prunes it")
	assert.True(t, ids[1])
}

func TestTrim_StripsClientFields(t *testing.T) {
	content := `{"children":{"a":{"id":5,"recycled":true,"label":"injected","x":1},"dir":{"children":{"b":{"id":6,"extra":[1,2]}}}}}`
	root, err := ParseTree(content)
	require.NoError(t, err)
	root.Trim()

	serialized, err := root.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"children":{"a":{"id":5,"recycled":true},"dir":{"children":{"b":{"id":6,"recycled":false}}}}}`,
		serialized)
}

func TestTrim_ClearsDocFieldsOnBranches(t *testing.T) {
	content := `{"children":{"dir":{"id":12,"children":{"a":{"id":5}}}}}`
	root, err := ParseTree(content)
	require.NoError(t, err)
	root.Trim()

	dir := root.Children["dir"]
	assert.False(t, dir.IsLeaf())
	assert.Zero(t, dir.ID)
	assert.Equal(t, map[uint64]bool{5: true}, root.LeafIDs())
}

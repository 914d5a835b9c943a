package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
	"github.com/roach88/formstate/internal/testutil"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	rt := reactive.NewRuntime(reactive.WithLogger(testutil.DiscardLogger()))
	return NewBuilder(rt, testutil.NewRegistry(), i18n.Keys)
}

func build(t *testing.T, name string) *Node {
	t.Helper()
	n, err := newBuilder(t).Build(name)
	require.NoError(t, err)
	return n
}

func TestPersonScenario(t *testing.T) {
	n := build(t, "person")

	require.NoError(t, n.Set(map[string]any{"name": ""}))
	assert.Equal(t, i18n.KeyRequired, n.Field("name").Error())

	require.NoError(t, n.Set(map[string]any{"name": "Ada"}))
	assert.Empty(t, n.Field("name").Error())

	assert.Equal(t, map[string]any{"id": nil, "name": "Ada"}, ToFlatValues(n))
}

func TestListScenario(t *testing.T) {
	n := build(t, "holder")

	err := n.Set(map[string]any{"items": []any{
		map[string]any{"id": 1, "label": "a"},
		map[string]any{"id": 2, "label": "b"},
	}})
	require.NoError(t, err)

	items := n.List("items")
	require.Equal(t, 2, items.Len())
	assert.Equal(t, "a", items.At(0).Field("label").Value())
	assert.Equal(t, "b", items.At(1).Field("label").Value())
	assert.Same(t, testutil.ItemEntity, items.At(0).Entity())

	flat := ToFlatValues(n)
	assert.Equal(t, []any{
		map[string]any{"id": int64(1), "label": "a"},
		map[string]any{"id": int64(2), "label": "b"},
	}, flat["items"])
}

func TestRoundTripAndIdempotence(t *testing.T) {
	payload := map[string]any{
		"id":      int64(7),
		"numero":  "OP-7",
		"montant": 12.5,
		"structure": map[string]any{
			"id":      int64(3),
			"libelle": "Siège",
		},
		"lignes": []any{
			map[string]any{"id": int64(1), "montant": 2.5},
			map[string]any{"id": int64(2), "montant": nil},
		},
	}

	n := build(t, "operation")
	require.NoError(t, n.Set(payload))
	assert.Equal(t, payload, ToFlatValues(n))

	require.NoError(t, n.Set(payload))
	assert.Equal(t, payload, ToFlatValues(n))

	again := build(t, "operation")
	require.NoError(t, again.Set(ToFlatValues(n)))
	assert.Equal(t, payload, ToFlatValues(again))
}

func TestSet_IgnoresUnknownKeysAndMergesPartially(t *testing.T) {
	n := build(t, "operation")
	require.NoError(t, n.Set(map[string]any{"numero": "A", "structure": map[string]any{"id": 1}}))
	require.NoError(t, n.Set(map[string]any{"unknown": true, "structure": map[string]any{"libelle": "x"}}))

	assert.Equal(t, "A", n.Field("numero").Value())
	assert.Equal(t, int64(1), n.Object("structure").Field("id").Value())
	assert.Equal(t, "x", n.Object("structure").Field("libelle").Value())
}

func TestSet_MalformedPayloadWritesNothing(t *testing.T) {
	n := build(t, "operation")
	require.NoError(t, n.Set(map[string]any{"numero": "A"}))

	err := n.Set(map[string]any{"numero": "B", "lignes": []any{map[string]any{"id": "x"}}})
	require.Error(t, err)
	var me *MergeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "lignes[0].id", me.Path)
	assert.Equal(t, "A", n.Field("numero").Value())

	err = n.Set(map[string]any{"structure": "nope"})
	assert.True(t, IsMergeError(err))

	err = n.Set(map[string]any{"lignes": map[string]any{}})
	assert.True(t, IsMergeError(err))
}

func TestClear(t *testing.T) {
	n := build(t, "operation")
	require.NoError(t, n.Set(map[string]any{
		"numero":    "A",
		"structure": map[string]any{"libelle": "x"},
		"lignes":    []any{map[string]any{"id": 1}},
	}))

	n.Clear()

	assert.Nil(t, n.Field("numero").Value())
	assert.Nil(t, n.Object("structure").Field("libelle").Value())
	assert.Equal(t, 0, n.List("lignes").Len())
}

func TestBuild_SelfReferentialListTerminates(t *testing.T) {
	n := build(t, "tree")
	assert.Equal(t, 0, n.List("children").Len())

	require.NoError(t, n.Set(map[string]any{
		"label": "root",
		"children": []any{
			map[string]any{"label": "a", "children": []any{map[string]any{"label": "a1"}}},
		},
	}))
	child := n.List("children").At(0)
	assert.Equal(t, "a1", child.List("children").At(0).Field("label").Value())
}

func TestBuild_Errors(t *testing.T) {
	b := newBuilder(t)
	_, err := b.Build("persn")
	assert.True(t, schema.IsSchemaNotFound(err))

	reg := schema.NewRegistry().MustRegister(
		schema.MustEntity("a", schema.ObjectEntry{Name: "b", EntityName: "b"}),
		schema.MustEntity("b", schema.ObjectEntry{Name: "a", EntityName: "a"}),
		schema.MustEntity("c", schema.ListEntry{Name: "xs", EntityName: "missing"}),
	)
	b = NewBuilder(b.Runtime(), reg, nil)

	_, err = b.Build("a")
	var cyc *schema.EmbeddingCycleError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"a", "b", "a"}, cyc.Path)

	_, err = b.Build("c")
	assert.True(t, schema.IsSchemaNotFound(err))
	assert.ErrorContains(t, err, "c.xs")
}

func TestListEditing(t *testing.T) {
	n := build(t, "holder")
	items := n.List("items")

	first, err := items.Append(map[string]any{"label": "a"})
	require.NoError(t, err)
	_, err = items.Append(map[string]any{"label": "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, items.Len())
	assert.Same(t, first, items.At(0))

	require.NoError(t, items.Remove(0))
	assert.Equal(t, "b", items.At(0).Field("label").Value())
	assert.Error(t, items.Remove(5))

	require.NoError(t, items.Set([]map[string]any{{"label": "x"}, {"label": "y"}}))
	assert.Equal(t, 2, items.Len())

	items.Clear()
	assert.Empty(t, items.Items())
}

func TestTypeDiscrimination(t *testing.T) {
	n := build(t, "operation")
	for prop, want := range map[string]schema.Kind{
		"numero":    schema.KindField,
		"structure": schema.KindObject,
		"lignes":    schema.KindList,
	} {
		m, ok := n.Member(prop)
		require.True(t, ok)
		assert.Equal(t, want, m.Kind())
	}

	assert.True(t, IsEntityField(n.Field("numero")))
	assert.True(t, IsStoreNode(n.Object("structure")))
	assert.True(t, IsStoreListNode(n.List("lignes")))
	assert.False(t, IsStoreNode(n.List("lignes")))
	assert.False(t, IsEntityField("numero"))
	assert.Nil(t, n.Field("structure"))
}

func TestWalk(t *testing.T) {
	n := build(t, "operation")
	require.NoError(t, n.Set(map[string]any{"lignes": []any{map[string]any{}, map[string]any{}}}))

	var paths []string
	Walk(n, func(path string, _ *Field) bool {
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, []string{
		"id", "numero", "montant",
		"structure.id", "structure.libelle",
		"lignes[0].id", "lignes[0].montant",
		"lignes[1].id", "lignes[1].montant",
	}, paths)
}

func TestEditSession(t *testing.T) {
	n := build(t, "person")
	assert.True(t, n.BeginEdit("s1"))
	assert.True(t, n.BeginEdit("s1"))
	assert.False(t, n.BeginEdit("s2"))
	n.EndEdit("s2")
	assert.Equal(t, "s1", n.EditSession())
	n.EndEdit("s1")
	assert.True(t, n.BeginEdit("s2"))
}

func TestEditSession_CoversEnclosingAndNestedNodes(t *testing.T) {
	n := build(t, "operation")
	require.NoError(t, n.Set(map[string]any{"lignes": []any{map[string]any{"id": 1}}}))
	structure := n.Object("structure")
	ligne := n.List("lignes").At(0)

	require.True(t, n.BeginEdit("s1"))
	assert.False(t, structure.BeginEdit("s2"))
	assert.False(t, ligne.BeginEdit("s2"))
	assert.True(t, structure.BeginEdit("s1"))
	structure.EndEdit("s1")
	n.EndEdit("s1")

	require.True(t, ligne.BeginEdit("s2"))
	assert.False(t, n.BeginEdit("s1"))
	assert.True(t, structure.BeginEdit("s1"))
	ligne.EndEdit("s2")
	structure.EndEdit("s1")
	assert.True(t, n.BeginEdit("s1"))
}

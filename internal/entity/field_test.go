package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formstate/internal/i18n"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
)

func TestFieldError_FollowsValue(t *testing.T) {
	n := build(t, "person")
	name := n.Field("name")
	rt := n.Runtime()

	var seen []string
	rt.Effect(func() { seen = append(seen, name.Error()) })

	require.NoError(t, name.Set("Ada"))
	require.NoError(t, name.Set(""))
	require.NoError(t, name.Set(""))

	assert.Equal(t, []string{i18n.KeyRequired, "", i18n.KeyRequired}, seen)
}

func TestFieldError_Override(t *testing.T) {
	n := build(t, "person")
	name := n.Field("name")

	name.SetError("taken")
	assert.Equal(t, "taken", name.Error())

	name.SetError("")
	assert.Empty(t, name.Error())

	name.ClearError()
	assert.Equal(t, i18n.KeyRequired, name.Error())
}

func TestField_SetCoercesToDeclaredType(t *testing.T) {
	n := build(t, "operation")

	require.NoError(t, n.Field("id").Set(3))
	assert.Equal(t, int64(3), n.Field("id").Value())

	require.NoError(t, n.Field("montant").Set(2))
	assert.Equal(t, 2.0, n.Field("montant").Value())

	assert.Error(t, n.Field("id").Set("three"))
	assert.Equal(t, int64(3), n.Field("id").Value())
}

func TestPatch_DoesNotMutateOriginal(t *testing.T) {
	n := build(t, "person")
	f := n.Field("id")
	before := f.Meta()

	patched := Patch(f, schema.Patch{IsRequired: schema.Ptr(true), Label: schema.Ptr("Identifier")})

	assert.Equal(t, before, f.Meta())
	assert.Empty(t, f.Error())
	assert.True(t, patched.IsRequired())
	assert.Equal(t, "Identifier", patched.Label())
	assert.Equal(t, i18n.KeyRequired, patched.Error())

	require.NoError(t, patched.Set(5))
	assert.Equal(t, int64(5), f.Value(), "value is shared")
	assert.Empty(t, patched.Error())
}

func TestPatchFunc_Reactive(t *testing.T) {
	n := build(t, "person")
	rt := n.Runtime()
	strict := reactive.NewValue(rt, false)

	id := PatchFunc(n.Field("id"), func() schema.Patch {
		return schema.Patch{IsRequired: schema.Ptr(strict.Get())}
	})

	assert.Empty(t, id.Error())
	strict.Set(true)
	assert.Equal(t, i18n.KeyRequired, id.Error())
}

func TestFieldPatch_MutatesOnlyThatField(t *testing.T) {
	n := build(t, "person")
	id, name := n.Field("id"), n.Field("name")

	id.Patch(schema.Patch{IsRequired: schema.Ptr(true)})
	id.Patch(schema.Patch{Label: schema.Ptr("ID")})

	assert.True(t, id.IsRequired())
	assert.Equal(t, "ID", id.Label())
	assert.Equal(t, "person.name", name.Label())

	other := build(t, "person")
	assert.False(t, other.Field("id").IsRequired(), "schema untouched")
}

func TestMakeField(t *testing.T) {
	rt := reactive.NewRuntime()
	f := MakeField(rt, i18n.Keys, "x", schema.Patch{Name: schema.Ptr("free"), IsRequired: schema.Ptr(true)})

	assert.Equal(t, "free", f.Name())
	assert.Equal(t, "x", f.Value())
	require.NoError(t, f.Set(""))
	assert.Equal(t, i18n.KeyRequired, f.Error())
}

func TestMakeComputedField(t *testing.T) {
	rt := reactive.NewRuntime()
	cents := reactive.NewValue(rt, int64(250))

	euros := MakeComputedField(rt, i18n.Keys,
		func() any { return float64(cents.Get()) / 100 },
		func(v any) { cents.Set(int64(v.(float64) * 100)) },
	)
	assert.Equal(t, 2.5, euros.Value())

	require.NoError(t, euros.Set(4.0))
	assert.Equal(t, int64(400), cents.Peek())
	assert.Equal(t, 4.0, euros.Value())

	label := MakeComputedField(rt, i18n.Keys, func() any { return fmt.Sprint(cents.Get()) }, nil)
	assert.ErrorIs(t, label.Set("1"), ErrReadOnly)
	assert.Equal(t, "400", label.Value())
}

func TestStringFor(t *testing.T) {
	rt := reactive.NewRuntime()
	refs := MakeReferenceList([]map[string]any{
		{"code": int64(1), "label": "One"},
		{"code": int64(2), "label": "Two"},
	}, "", "")

	f := MakeField(rt, i18n.Keys, 2)
	assert.Equal(t, "Two", StringFor(f, refs))

	require.NoError(t, f.Set(9))
	assert.Equal(t, "9", StringFor(f, refs))

	require.NoError(t, f.Set(nil))
	assert.Equal(t, "", StringFor(f))

	upper := MakeField(rt, i18n.Keys, 1, schema.Patch{DisplayFormatter: func(v any) string {
		return fmt.Sprintf("<%v>", v)
	}})
	assert.Equal(t, "<One>", StringFor(upper, refs))

	custom := MakeReferenceList([]map[string]any{{"id": "fr", "name": "France"}}, "id", "name")
	assert.Equal(t, "France", StringFor(MakeField(rt, i18n.Keys, "fr"), custom))
}

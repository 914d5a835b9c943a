package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_LastLayerWins(t *testing.T) {
	base := FieldEntry{Name: "name", Label: "person.name", Type: TypeString}

	got := Merge(base,
		Patch{Label: Ptr("first"), IsRequired: Ptr(true)},
		Patch{Label: Ptr("second")},
	)

	assert.Equal(t, "second", got.Label)
	assert.True(t, got.IsRequired)
	assert.Equal(t, "name", got.Name)
	assert.Equal(t, TypeString, got.Type)
}

func TestMerge_PropsMergeKeyWise(t *testing.T) {
	base := FieldEntry{Name: "name", Domain: Domain{
		ClassName:  "base",
		InputProps: Props{"size": 10, "placeholder": "type here"},
		LabelProps: Props{"bold": true},
	}}

	got := Merge(base, Patch{InputProps: Props{"size": 20}})

	assert.Equal(t, Props{"size": 20, "placeholder": "type here"}, got.Domain.InputProps)
	assert.Equal(t, Props{"bold": true}, got.Domain.LabelProps)
	assert.Equal(t, "base", got.Domain.ClassName)
	assert.Equal(t, 10, base.Domain.InputProps["size"], "base props untouched")
}

func TestMerge_DomainReplacementThenOverrides(t *testing.T) {
	base := FieldEntry{Name: "n", Domain: Domain{ClassName: "old", InputProps: Props{"a": 1}}}
	replacement := Domain{ClassName: "new", InputProps: Props{"b": 2}}

	got := Merge(base, Patch{Domain: &replacement, InputProps: Props{"c": 3}})

	assert.Equal(t, "new", got.Domain.ClassName)
	assert.Equal(t, Props{"b": 2, "c": 3}, got.Domain.InputProps)
	assert.Equal(t, Props{"b": 2}, replacement.InputProps)
}

func TestMerge_Validators(t *testing.T) {
	base := FieldEntry{Domain: Domain{Validators: []Validator{EmailValidator{}}}}

	kept := Merge(base, Patch{Label: Ptr("x")})
	assert.Len(t, kept.Domain.Validators, 1)

	cleared := Merge(base, Patch{Validators: []Validator{}})
	assert.Empty(t, cleared.Domain.Validators)
	assert.Len(t, base.Domain.Validators, 1)
}

func TestDomainExtend(t *testing.T) {
	d := Domain{ClassName: "a", DisplayProps: Props{"x": 1}}
	e := d.Extend(Patch{ClassName: Ptr("b"), DisplayProps: Props{"y": 2}})

	assert.Equal(t, "b", e.ClassName)
	assert.Equal(t, Props{"x": 1, "y": 2}, e.DisplayProps)
	assert.Equal(t, "a", d.ClassName)
}

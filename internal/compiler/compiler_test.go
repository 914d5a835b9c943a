package compiler

import (
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formstate/internal/schema"
)

const operationSpec = `
domain: code: {
	className: "code"
	inputProps: {maxLength: 10}
	validators: [
		{type: "regex", regex: "^[A-Z]+-[0-9]+$", message: "code.format"},
		{type: "string", minLength: 3, maxLength: 10},
	]
}

entity: structure: fields: {
	id:      {fieldType: "int"}
	libelle: {fieldType: "string", required: true, label: "Structure"}
}

entity: operation: fields: {
	id:      {fieldType: "int"}
	numero:  {fieldType: "string", required: true, domain: "code"}
	montant: {fieldType: "number", domain: {validators: [{type: "number", min: 0}]}}
	even:    {fieldType: "int", domain: {validators: [{type: "function", name: "even"}]}}
	structure: {type: "object", entity: "structure"}
	lignes:    {type: "list", entity: "ligne"}
}

entity: ligne: fields: {
	id: {type: "field", fieldType: "int", required: true}
}
`

var testPredicates = Predicates{
	"even": func(v any) bool {
		n, ok := v.(int64)
		return ok && n%2 == 0
	},
}

func compile(t *testing.T, src string) (*schema.Registry, []string, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("test.cue"))
	reg := schema.NewRegistry()
	names, err := Compile(v, reg, testPredicates)
	return reg, names, err
}

func TestCompile(t *testing.T) {
	reg, names, err := compile(t, operationSpec)
	require.NoError(t, err)
	assert.Equal(t, []string{"structure", "operation", "ligne"}, names)
	assert.Empty(t, Validate(reg))

	op, err := reg.Resolve("operation")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "numero", "montant", "even", "structure", "lignes"}, op.Props())

	entry, _ := op.Entry("numero")
	numero := entry.(schema.FieldEntry)
	assert.True(t, numero.IsRequired)
	assert.Equal(t, schema.TypeString, numero.Type)
	assert.Equal(t, "operation.numero", numero.Label)
	assert.Equal(t, "code", numero.Domain.Name)
	assert.Equal(t, "code", numero.Domain.ClassName)
	assert.EqualValues(t, 10, numero.Domain.InputProps["maxLength"])
	require.Len(t, numero.Domain.Validators, 2)
	assert.Equal(t, "code.format", numero.Domain.Validators[0].Message())
	assert.Equal(t, schema.StringValidator{MinLength: 3, MaxLength: 10}, numero.Domain.Validators[1])

	entry, _ = op.Entry("montant")
	montant := entry.(schema.FieldEntry)
	assert.Equal(t, schema.TypeFloat, montant.Type)
	nv := montant.Domain.Validators[0].(schema.NumberValidator)
	require.NotNil(t, nv.Min)
	assert.Equal(t, 0.0, *nv.Min)
	assert.Nil(t, nv.Max)

	entry, _ = op.Entry("even")
	fv := entry.(schema.FieldEntry).Domain.Validators[0].(schema.FuncValidator)
	assert.True(t, fv.Func(int64(4)))

	entry, _ = op.Entry("lignes")
	assert.Equal(t, schema.ListEntry{Name: "lignes", EntityName: "ligne"}, entry)

	s, _ := reg.Resolve("structure")
	entry, _ = s.Entry("libelle")
	assert.Equal(t, "Structure", entry.(schema.FieldEntry).Label)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown domain", `entity: a: fields: x: {domain: "nope"}`, `unknown domain "nope"`},
		{"unknown type", `entity: a: fields: x: {fieldType: "decimal"}`, `unknown field type "decimal"`},
		{"unknown entry", `entity: a: fields: x: {type: "map"}`, `unknown entry type "map"`},
		{"list without entity", `entity: a: fields: x: {type: "list"}`, "must name an entity"},
		{"missing fields", `entity: a: {}`, "fields are required"},
		{"bad regex", `domain: d: validators: [{type: "regex", regex: "("}]`, "validators.regex"},
		{"unknown validator", `domain: d: validators: [{type: "luhn"}]`, `unknown validator type "luhn"`},
		{"unknown predicate", `domain: d: validators: [{type: "function", name: "odd"}]`, `unknown predicate "odd"`},
		{"cue conflict", `entity: a: fields: x: {fieldType: "int"}
entity: a: fields: x: {fieldType: "string"}`, "conflicting values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compile(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileError_Position(t *testing.T) {
	_, _, err := compile(t, `entity: a: fields: x: {domain: "nope"}`)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "entity.a.fields.x.domain", ce.Field)
	assert.True(t, strings.HasPrefix(err.Error(), "test.cue:1:"), err.Error())
}

func TestValidate(t *testing.T) {
	reg, _, err := compile(t, `
entity: a: fields: {b: {type: "object", entity: "b"}, c: {type: "list", entity: "missing"}}
entity: b: fields: a: {type: "object", entity: "a"}
`)
	require.NoError(t, err)
	reg.MustRegister(schema.MustEntity("empty"), schema.MustEntity("nolabel", schema.FieldEntry{Name: "x"}))

	errs := Validate(reg)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{ErrEmptyEntity, ErrMissingLabel, ErrUnknownEntityRef, ErrEmbeddingCycle}, codes)
}

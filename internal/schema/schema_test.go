package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person() *Entity {
	return MustEntity("person",
		FieldEntry{Name: "id", Label: "person.id", Type: TypeInt},
		FieldEntry{Name: "name", Label: "person.name", IsRequired: true, Type: TypeString},
	)
}

func TestNewEntity_KeepsDeclarationOrder(t *testing.T) {
	e := MustEntity("operation",
		FieldEntry{Name: "numero"},
		ObjectEntry{Name: "structure", EntityName: "structure"},
		ListEntry{Name: "lignes", EntityName: "ligne"},
	)

	assert.Equal(t, []string{"numero", "structure", "lignes"}, e.Props())
	entry, ok := e.Entry("structure")
	require.True(t, ok)
	assert.Equal(t, KindObject, entry.Kind())
	ref, ok := Ref(entry)
	assert.True(t, ok)
	assert.Equal(t, "structure", ref)
}

func TestNewEntity_Rejects(t *testing.T) {
	_, err := NewEntity("")
	assert.Error(t, err)

	_, err = NewEntity("e", FieldEntry{Name: "a"}, FieldEntry{Name: "a"})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewEntity("e", ListEntry{Name: "items"})
	assert.ErrorContains(t, err, "must reference")
}

func TestRegistry_ResolveSuggestsClosestName(t *testing.T) {
	r := NewRegistry().MustRegister(person())

	_, err := r.Resolve("persn")
	require.Error(t, err)
	assert.True(t, IsSchemaNotFound(err))
	assert.Contains(t, err.Error(), `did you mean "person"`)

	_, err = r.Resolve("invoice")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry().MustRegister(person())

	err := r.Register(person())
	var dup *DuplicateEntityError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "person", dup.Name)
}

func TestRegistry_CheckReportsDanglingAndCycles(t *testing.T) {
	r := NewRegistry().MustRegister(
		MustEntity("a", ObjectEntry{Name: "b", EntityName: "b"}),
		MustEntity("b", ObjectEntry{Name: "a", EntityName: "a"}),
		MustEntity("tree", ListEntry{Name: "children", EntityName: "tree"}),
		MustEntity("orphan", ObjectEntry{Name: "x", EntityName: "missing"}),
	)

	errs := r.Check()
	require.Len(t, errs, 2)

	var nf *SchemaNotFoundError
	require.ErrorAs(t, errs[0], &nf)
	assert.Equal(t, "orphan.x", nf.From)

	var cyc *EmbeddingCycleError
	require.ErrorAs(t, errs[1], &cyc)
	assert.Equal(t, []string{"a", "b", "a"}, cyc.Path)
}

func TestAnalyzeEmbedding_SelfEmbedding(t *testing.T) {
	cycles := AnalyzeEmbedding([]*Entity{
		MustEntity("node", ObjectEntry{Name: "next", EntityName: "node"}),
	})
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"node", "node"}, cycles[0].Path)
}

func TestAnalyzeEmbedding_ListsAreNotEdges(t *testing.T) {
	cycles := AnalyzeEmbedding([]*Entity{
		MustEntity("tree", ListEntry{Name: "children", EntityName: "tree"}),
	})
	assert.Empty(t, cycles)
}

func TestRegistry_Domains(t *testing.T) {
	r := NewRegistry()
	r.RegisterDomain("email", Domain{ClassName: "email", Validators: []Validator{EmailValidator{}}})
	r.RegisterDomain("code", Domain{})
	r.RegisterDomain("email", Domain{ClassName: "mail"})

	d, ok := r.Domain("email")
	require.True(t, ok)
	assert.Equal(t, "mail", d.ClassName)
	assert.Equal(t, "email", d.Name)
	assert.Equal(t, []string{"email", "code"}, r.DomainNames())
}

package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/formstate/internal/schema"
)

// PersonEntity: an optional numeric id and a required name.
var PersonEntity = schema.MustEntity("person",
	schema.FieldEntry{Name: "id", Label: "person.id", Type: schema.TypeInt},
	schema.FieldEntry{Name: "name", Label: "person.name", IsRequired: true, Type: schema.TypeString},
)

// ItemEntity is the element of ListHolderEntity.
var ItemEntity = schema.MustEntity("item",
	schema.FieldEntry{Name: "id", Label: "item.id", Type: schema.TypeInt},
	schema.FieldEntry{Name: "label", Label: "item.label", IsRequired: true, Type: schema.TypeString},
)

// ListHolderEntity holds a list of items.
var ListHolderEntity = schema.MustEntity("holder",
	schema.FieldEntry{Name: "title", Label: "holder.title", Type: schema.TypeString},
	schema.ListEntry{Name: "items", EntityName: "item"},
)

// StructureEntity is embedded by OperationEntity.
var StructureEntity = schema.MustEntity("structure",
	schema.FieldEntry{Name: "id", Label: "structure.id", Type: schema.TypeInt},
	schema.FieldEntry{Name: "libelle", Label: "structure.libelle", IsRequired: true, Type: schema.TypeString},
)

// LigneEntity is the element of OperationEntity.lignes.
var LigneEntity = schema.MustEntity("ligne",
	schema.FieldEntry{Name: "id", Label: "ligne.id", IsRequired: true, Type: schema.TypeInt},
	schema.FieldEntry{Name: "montant", Label: "ligne.montant", Type: schema.TypeFloat},
)

// OperationEntity mixes fields, a nested object and a list.
var OperationEntity = schema.MustEntity("operation",
	schema.FieldEntry{Name: "id", Label: "operation.id", Type: schema.TypeInt},
	schema.FieldEntry{Name: "numero", Label: "operation.numero", IsRequired: true, Type: schema.TypeString},
	schema.FieldEntry{Name: "montant", Label: "operation.montant", Type: schema.TypeFloat},
	schema.ObjectEntry{Name: "structure", EntityName: "structure"},
	schema.ListEntry{Name: "lignes", EntityName: "ligne"},
)

// TreeEntity contains a list of itself.
var TreeEntity = schema.MustEntity("tree",
	schema.FieldEntry{Name: "label", Label: "tree.label", Type: schema.TypeString},
	schema.ListEntry{Name: "children", EntityName: "tree"},
)

// NewRegistry returns a registry holding every fixture entity.
func NewRegistry() *schema.Registry {
	return schema.NewRegistry().MustRegister(
		PersonEntity,
		ItemEntity,
		ListHolderEntity,
		StructureEntity,
		LigneEntity,
		OperationEntity,
		TreeEntity,
	)
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

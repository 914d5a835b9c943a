package compiler

import (
	"fmt"
	"regexp"

	"cuelang.org/go/cue"

	"github.com/roach88/formstate/internal/schema"
)

// Predicates maps names usable by "function" validators to Go functions.
// Predicates cannot be written in CUE, so schema files refer to them by
// name.
type Predicates map[string]func(value any) bool

// DomainLookup resolves a domain referenced by name from a field.
type DomainLookup func(name string) (schema.Domain, bool)

// Compile registers every domain and entity of a CUE value into reg:
//
//	domain: email: {
//		className: "email"
//		validators: [{type: "email"}]
//	}
//	entity: person: fields: {
//		id:   {fieldType: "int"}
//		name: {fieldType: "string", required: true, domain: "email"}
//		structure: {type: "object", entity: "structure"}
//		lignes: {type: "list", entity: "ligne"}
//	}
//
// Domains are registered first so entities may use any of them. It returns
// the names of the compiled entities in file order.
func Compile(v cue.Value, reg *schema.Registry, preds Predicates) ([]string, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if domains := v.LookupPath(cue.ParsePath("domain")); domains.Exists() {
		iter, err := domains.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			d, err := CompileDomain(iter.Value(), preds)
			if err != nil {
				return nil, err
			}
			reg.RegisterDomain(iter.Selector().Unquoted(), d)
		}
	}

	var names []string
	if entities := v.LookupPath(cue.ParsePath("entity")); entities.Exists() {
		iter, err := entities.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			e, err := CompileEntity(iter.Value(), reg.Domain, preds)
			if err != nil {
				return nil, err
			}
			if err := reg.Register(e); err != nil {
				return nil, &CompileError{Field: "entity." + e.Name(), Message: err.Error(), Pos: iter.Value().Pos()}
			}
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// CompileEntity parses one entity. The entity name is the last label of
// the value path. Field labels default to "<entity>.<prop>".
func CompileEntity(v cue.Value, domains DomainLookup, preds Predicates) (*schema.Entity, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name := lastLabel(v)
	if name == "" {
		return nil, &CompileError{Field: "entity", Message: "entity name is required", Pos: v.Pos()}
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: "entity." + name + ".fields", Message: "fields are required", Pos: v.Pos()}
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var entries []schema.Entry
	for iter.Next() {
		prop := iter.Selector().Unquoted()
		entry, err := compileEntry(name, prop, iter.Value(), domains, preds)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	e, err := schema.NewEntity(name, entries...)
	if err != nil {
		return nil, &CompileError{Field: "entity." + name, Message: err.Error(), Pos: v.Pos()}
	}
	return e, nil
}

func compileEntry(owner, prop string, v cue.Value, domains DomainLookup, preds Predicates) (schema.Entry, error) {
	path := fmt.Sprintf("entity.%s.fields.%s", owner, prop)

	kind, err := optString(v, "type")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "object", "list":
		ref, err := optString(v, "entity")
		if err != nil {
			return nil, err
		}
		if ref == "" {
			return nil, &CompileError{Field: path + ".entity", Message: kind + " entries must name an entity", Pos: v.Pos()}
		}
		if kind == "object" {
			return schema.ObjectEntry{Name: prop, EntityName: ref}, nil
		}
		return schema.ListEntry{Name: prop, EntityName: ref}, nil
	case "", "field":
	default:
		return nil, &CompileError{Field: path + ".type", Message: fmt.Sprintf("unknown entry type %q", kind), Pos: v.Pos()}
	}

	entry := schema.FieldEntry{Name: prop, Label: owner + "." + prop}
	if label, err := optString(v, "label"); err != nil {
		return nil, err
	} else if label != "" {
		entry.Label = label
	}

	typeName, err := optString(v, "fieldType")
	if err != nil {
		return nil, err
	}
	if entry.Type, err = schema.ParseValueType(typeName); err != nil {
		return nil, &CompileError{Field: path + ".fieldType", Message: err.Error(), Pos: v.Pos()}
	}

	if req := v.LookupPath(cue.ParsePath("required")); req.Exists() {
		if entry.IsRequired, err = req.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	if dv := v.LookupPath(cue.ParsePath("domain")); dv.Exists() {
		if ref, err := dv.String(); err == nil {
			d, ok := domains(ref)
			if !ok {
				return nil, &CompileError{Field: path + ".domain", Message: fmt.Sprintf("unknown domain %q", ref), Pos: dv.Pos()}
			}
			entry.Domain = d
		} else {
			if entry.Domain, err = CompileDomain(dv, preds); err != nil {
				return nil, err
			}
		}
	}
	return entry, nil
}

// CompileDomain parses a domain: className, component props and
// validators. Formatters and components are Go values and cannot come
// from CUE; they are attached by refining the registered domain in Go.
func CompileDomain(v cue.Value, preds Predicates) (schema.Domain, error) {
	var d schema.Domain
	if err := v.Err(); err != nil {
		return d, formatCUEError(err)
	}
	d.Name = lastLabel(v)

	var err error
	if d.ClassName, err = optString(v, "className"); err != nil {
		return d, err
	}
	if d.InputProps, err = optProps(v, "inputProps"); err != nil {
		return d, err
	}
	if d.DisplayProps, err = optProps(v, "displayProps"); err != nil {
		return d, err
	}
	if d.LabelProps, err = optProps(v, "labelProps"); err != nil {
		return d, err
	}

	vals := v.LookupPath(cue.ParsePath("validators"))
	if !vals.Exists() {
		return d, nil
	}
	iter, err := vals.List()
	if err != nil {
		return d, formatCUEError(err)
	}
	for iter.Next() {
		val, err := compileValidator(iter.Value(), preds)
		if err != nil {
			return d, err
		}
		d.Validators = append(d.Validators, val)
	}
	return d, nil
}

func compileValidator(v cue.Value, preds Predicates) (schema.Validator, error) {
	kind, err := optString(v, "type")
	if err != nil {
		return nil, err
	}
	msg, err := optString(v, "message")
	if err != nil {
		return nil, err
	}

	switch schema.ValidatorKind(kind) {
	case schema.ValidatorRegex:
		expr, err := optString(v, "regex")
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &CompileError{Field: "validators.regex", Message: err.Error(), Pos: v.Pos()}
		}
		return schema.RegexValidator{Regex: re, MessageKey: msg}, nil
	case schema.ValidatorEmail:
		return schema.EmailValidator{MessageKey: msg}, nil
	case schema.ValidatorNumber:
		lo, err := optFloat(v, "min")
		if err != nil {
			return nil, err
		}
		hi, err := optFloat(v, "max")
		if err != nil {
			return nil, err
		}
		return schema.NumberValidator{Min: lo, Max: hi, MessageKey: msg}, nil
	case schema.ValidatorString:
		lo, err := optInt(v, "minLength")
		if err != nil {
			return nil, err
		}
		hi, err := optInt(v, "maxLength")
		if err != nil {
			return nil, err
		}
		return schema.StringValidator{MinLength: lo, MaxLength: hi, MessageKey: msg}, nil
	case schema.ValidatorDate:
		layout, err := optString(v, "layout")
		if err != nil {
			return nil, err
		}
		return schema.DateValidator{Layout: layout, MessageKey: msg}, nil
	case schema.ValidatorFunction:
		name, err := optString(v, "name")
		if err != nil {
			return nil, err
		}
		fn, ok := preds[name]
		if !ok {
			return nil, &CompileError{Field: "validators.name", Message: fmt.Sprintf("unknown predicate %q", name), Pos: v.Pos()}
		}
		return schema.Predicate(name, fn, msg), nil
	default:
		return nil, &CompileError{Field: "validators.type", Message: fmt.Sprintf("unknown validator type %q", kind), Pos: v.Pos()}
	}
}

func lastLabel(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].Unquoted()
}

func optString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optFloat(v cue.Value, field string) (*float64, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	n, err := f.Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return &n, nil
}

func optInt(v cue.Value, field string) (int, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return 0, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optProps(v cue.Value, field string) (schema.Props, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	var props schema.Props
	if err := f.Decode(&props); err != nil {
		return nil, formatCUEError(err)
	}
	return props, nil
}

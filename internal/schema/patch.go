package schema

// Patch is one override layer over a FieldEntry. Nil members leave the layer
// below untouched. Props maps merge key by key; every other member replaces.
type Patch struct {
	Name       *string
	Label      *string
	IsRequired *bool

	// Domain replaces the base domain before the domain members of this
	// patch are applied on top of it.
	Domain *Domain

	ClassName        *string
	DisplayFormatter func(value any) string
	InputFormatter   func(value any) string
	Unformatter      func(text string) any
	// Validators replaces the validator list when non-nil. An empty,
	// non-nil slice removes every validator.
	Validators []Validator

	DisplayComponent Component
	DisplayProps     Props
	InputComponent   Component
	InputProps       Props
	LabelComponent   Component
	LabelProps       Props
}

// Ptr returns a pointer to v, for filling Patch members inline.
func Ptr[T any](v T) *T {
	return &v
}

// Merge applies layers over base in order, last layer winning. base is
// passed by value and the Props maps it references are never written.
func Merge(base FieldEntry, layers ...Patch) FieldEntry {
	out := base
	for _, p := range layers {
		if p.Name != nil {
			out.Name = *p.Name
		}
		if p.Label != nil {
			out.Label = *p.Label
		}
		if p.IsRequired != nil {
			out.IsRequired = *p.IsRequired
		}
		if p.Domain != nil {
			out.Domain = *p.Domain
		}
		out.Domain = mergeDomain(out.Domain, p)
	}
	return out
}

func mergeDomain(d Domain, p Patch) Domain {
	out := d
	if p.ClassName != nil {
		out.ClassName = *p.ClassName
	}
	if p.DisplayFormatter != nil {
		out.DisplayFormatter = p.DisplayFormatter
	}
	if p.InputFormatter != nil {
		out.InputFormatter = p.InputFormatter
	}
	if p.Unformatter != nil {
		out.Unformatter = p.Unformatter
	}
	if p.Validators != nil {
		out.Validators = append([]Validator(nil), p.Validators...)
	}
	if p.DisplayComponent != nil {
		out.DisplayComponent = p.DisplayComponent
	}
	if p.InputComponent != nil {
		out.InputComponent = p.InputComponent
	}
	if p.LabelComponent != nil {
		out.LabelComponent = p.LabelComponent
	}
	out.DisplayProps = d.DisplayProps.Merge(p.DisplayProps)
	out.InputProps = d.InputProps.Merge(p.InputProps)
	out.LabelProps = d.LabelProps.Merge(p.LabelProps)
	return out
}

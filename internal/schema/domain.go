package schema

// Component is an opaque reference to a rendering component. The data layer
// forwards it to consumers and never looks inside.
type Component = any

// Props holds properties forwarded to a rendering component.
type Props map[string]any

// Merge returns a new Props holding p overlaid key by key with over.
// Neither input is modified.
func (p Props) Merge(over Props) Props {
	if len(p) == 0 && len(over) == 0 {
		return nil
	}
	out := make(Props, len(p)+len(over))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Domain bundles formatting, parsing, validation and rendering hints shared
// by every field of a given kind of value.
type Domain struct {
	Name      string
	ClassName string

	// DisplayFormatter renders a value for read-only display.
	DisplayFormatter func(value any) string
	// InputFormatter renders a value into an input.
	InputFormatter func(value any) string
	// Unformatter parses input text back into a value.
	Unformatter func(text string) any

	Validators []Validator

	DisplayComponent Component
	DisplayProps     Props
	InputComponent   Component
	InputProps       Props
	LabelComponent   Component
	LabelProps       Props
}

// Extend returns a copy of d with the domain part of p applied.
func (d Domain) Extend(p Patch) Domain {
	return mergeDomain(d, p)
}

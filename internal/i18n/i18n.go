// Package i18n resolves message keys to display strings.
//
// The entity layer never embeds user-facing text: validation produces keys
// such as KeyRequired, and a Translator turns them into localized messages.
// Catalog is the default Translator, backed by golang.org/x/text catalogs.
package i18n

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys produced by the validation engine.
const (
	KeyRequired        = "validation.required"
	KeyRegex           = "validation.regex"
	KeyEmail           = "validation.email"
	KeyNumberInvalid   = "validation.number.invalid"
	KeyNumberMin       = "validation.number.min"
	KeyNumberMax       = "validation.number.max"
	KeyStringMinLength = "validation.string.min_length"
	KeyStringMaxLength = "validation.string.max_length"
	KeyDate            = "validation.date"
	KeyPredicate       = "validation.predicate"
)

// Translator resolves a message key, formatting args into the message.
type Translator interface {
	Translate(key string, args ...any) string
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(key string, args ...any) string

func (f TranslatorFunc) Translate(key string, args ...any) string {
	return f(key, args...)
}

// Keys returns message keys untouched. Useful in tests asserting on keys.
var Keys Translator = TranslatorFunc(func(key string, args ...any) string {
	return key
})

// English holds the built-in messages for every validation key.
var English = map[string]string{
	KeyRequired:        "This field is required",
	KeyRegex:           "The value does not match the expected format",
	KeyEmail:           "The value is not a valid email address",
	KeyNumberInvalid:   "The value is not a number",
	KeyNumberMin:       "The value must be greater than or equal to %v",
	KeyNumberMax:       "The value must be less than or equal to %v",
	KeyStringMinLength: "The value must have at least %d characters",
	KeyStringMaxLength: "The value must have at most %d characters",
	KeyDate:            "The value is not a valid date",
	KeyPredicate:       "The value is invalid",
}

// Catalog is a Translator over an x/text message catalog.
type Catalog struct {
	tag     language.Tag
	builder *catalog.Builder
	printer *message.Printer
}

// NewCatalog creates a catalog for tag, preloaded with the English messages
// so that locales without translations still print readable text.
func NewCatalog(tag language.Tag) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range English {
		// SetString only fails on malformed tags; both tags are well-formed.
		_ = b.SetString(language.English, key, msg)
		if tag != language.English {
			_ = b.SetString(tag, key, msg)
		}
	}
	return &Catalog{
		tag:     tag,
		builder: b,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}
}

// ParseCatalog creates a catalog for a BCP 47 locale string.
func ParseCatalog(locale string) (*Catalog, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return NewCatalog(tag), nil
}

// Tag returns the catalog language.
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// Set registers msg for key in the catalog language.
func (c *Catalog) Set(key, msg string) error {
	return c.SetFor(c.tag, key, msg)
}

// SetFor registers msg for key in an explicit language.
func (c *Catalog) SetFor(tag language.Tag, key, msg string) error {
	if err := c.builder.SetString(tag, key, msg); err != nil {
		return fmt.Errorf("set message %q: %w", key, err)
	}
	return nil
}

// Translate prints the message registered for key. Keys with no message are
// returned as is.
func (c *Catalog) Translate(key string, args ...any) string {
	return c.printer.Sprintf(key, args...)
}

// LoadYAML reads a flat key: message mapping and registers every entry in
// the catalog language.
func (c *Catalog) LoadYAML(r io.Reader) error {
	var messages map[string]string
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&messages); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode messages: %w", err)
	}

	keys := make([]string, 0, len(messages))
	for k := range messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, messages[k]); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile registers the messages of a YAML file.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read messages: %w", err)
	}
	return c.LoadYAML(bytes.NewReader(data))
}

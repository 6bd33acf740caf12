// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from the errors package
// to avoid an import cycle).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogs = map[string]*Catalog{}

	// localeOrder mirrors the matcher's tag order; the base locale is
	// first so it wins when nothing matches.
	localeOrder []string

	// matcher resolves requested locales (including Accept-Language
	// values) against the registered catalogs.
	matcher language.Matcher
)

func init() {
	for _, cat := range []*Catalog{enUSCatalog, ptBRCatalog} {
		catalogs[cat.locale] = cat
		localeOrder = append(localeOrder, cat.locale)
	}

	tags := make([]language.Tag, 0, len(localeOrder))
	for _, locale := range localeOrder {
		tags = append(tags, language.MustParse(locale))
	}
	matcher = language.NewMatcher(tags)
}

// GetCatalog returns the catalog best matching the requested locale.
// The request may be a bare locale ("pt-BR") or a full Accept-Language
// header value; unknown locales fall back to en-US.
func GetCatalog(requested string) *Catalog {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return catalogs[BaseLocale]
	}

	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return catalogs[BaseLocale]
	}

	_, index, _ := matcher.Match(tags...)
	if index < 0 || index >= len(localeOrder) {
		return catalogs[BaseLocale]
	}
	return catalogs[localeOrder[index]]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// Package renderer turns a session into human readable trace output.
// Message text comes from gettext catalogues embedded in the binary.
package renderer

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed locales/*.po
var locales embed.FS

// DefaultLanguage is used when no catalogue exists for the requested one
const DefaultLanguage = "en"

// Catalog loads the message catalogue for lang, falling back to
// DefaultLanguage for unknown languages
func Catalog(lang string) (*gotext.Po, error) {
	data, err := locales.ReadFile(path.Join("locales", lang+".po"))
	if err != nil {
		data, err = locales.ReadFile(path.Join("locales", DefaultLanguage+".po"))
		if err != nil {
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
	}

	po := gotext.NewPo()
	po.Parse(data)
	return po, nil
}

// Languages lists the embedded catalogues
func Languages() []string {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".po"))
	}
	sort.Strings(langs)
	return langs
}

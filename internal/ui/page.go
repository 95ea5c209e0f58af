package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"

	"github.com/ytget/yt-server/internal/config"
)

// IndexTemplate is the name of the page template
const IndexTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Language is one entry of the language switcher
type Language struct {
	Code string
	Name string
}

// QualityOption is one entry of the quality selector
type QualityOption struct {
	Value    string
	Label    string
	Selected bool
}

// Page is the data rendered into the index template
type Page struct {
	Lang      string
	Languages []Language
	Qualities []QualityOption
	texts     map[string]string
}

// T returns the page text for key
func (p Page) T(key string) string {
	if text, ok := p.texts[key]; ok {
		return text
	}
	return key
}

// NewPage builds the template data for lang
func NewPage(loc *Localization, lang string, quality config.QualityPreset) Page {
	page := Page{Lang: lang, texts: loc.Texts(lang)}

	for code, name := range loc.GetAvailableLanguages() {
		page.Languages = append(page.Languages, Language{Code: code, Name: name})
	}
	sort.Slice(page.Languages, func(i, j int) bool {
		return page.Languages[i].Code < page.Languages[j].Code
	})

	labels := map[config.QualityPreset]string{
		config.QualityBest:   KeyQualityBest,
		config.QualityMedium: KeyQualityMedium,
		config.QualityAudio:  KeyQualityAudio,
	}
	for _, q := range config.QualityPresetOptions() {
		page.Qualities = append(page.Qualities, QualityOption{
			Value:    string(q),
			Label:    page.T(labels[q]),
			Selected: q == quality,
		})
	}
	return page
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// StaticFS returns the embedded CSS and JavaScript served under /static
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}

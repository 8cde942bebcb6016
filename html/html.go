// Package html renders Mau documents as HTML.
//
// The package embeds a complete collection of templates, registered as the
// template provider "html", and an Emitter that enriches the records of
// source and diagram blocks before they reach the templates.
package html

import (
	"embed"
	"io/fs"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/templates"
)

// ProviderName is the name of the embedded templates.
const ProviderName = "html"

// Extension is the extension of the embedded templates.
const Extension = "html"

//go:embed templates
var embedded embed.FS

func init() {
	fsys, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	templates.RegisterProvider(ProviderName, fsys)
}

// Configure sets the keys needed to render with the embedded templates,
// unless they are already present in e.
func Configure(e *env.Environment) {
	if _, ok := e.Get("mau.visitor.template_providers"); !ok {
		e.Set("mau.visitor.template_providers", []any{ProviderName})
	}
	if _, ok := e.Get("mau.visitor.extension"); !ok {
		e.Set("mau.visitor.extension", Extension)
	}
}

// Package web embeds the page templates and static assets of the front end.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other static files.
func StaticFS() fs.FS { return sub("static") }

// TemplatesFS returns the HTML templates.
func TemplatesFS() fs.FS { return sub("templates") }

// sub cannot fail for directories named in the embed directive.
func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return f
}

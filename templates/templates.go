// Package templates embeds the storefront's HTML templates.
package templates

import "embed"

//go:embed base.tmpl pages/*.tmpl partials/*.tmpl
var FS embed.FS

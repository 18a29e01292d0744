// Package templates embeds the HTML view shell.
package templates

import "embed"

//go:embed base.html pages/*.html
var FS embed.FS

// Package web holds the page template and static assets served by the UI.
package web

import "embed"

//go:embed templates static
var FS embed.FS

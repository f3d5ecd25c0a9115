package appfs

import "embed"

// FS holds the HTML templates and static assets of the dashboard.
//go:embed all:templates static
var FS embed.FS

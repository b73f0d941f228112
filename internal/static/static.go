package static

import _ "embed"

// APIMd contains the embedded api.md usage guide for API clients.
//
//go:embed api.md
var APIMd string

// IndexHTML contains the embedded index.html landing page.
//
//go:embed index.html
var IndexHTML string

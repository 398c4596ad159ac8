package web

import "embed"

// Assets embeds the dashboard's static directory into the binary.
//
//go:embed static
var Assets embed.FS

// Package appfs embeds the static files shipped inside the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql all:templates
var FS embed.FS

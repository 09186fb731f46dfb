package assets

import "embed"

//go:embed all:templates
var TemplatesFS embed.FS

//go:embed all:media
var MediaFS embed.FS

//go:embed all:migrations
var MigrationsFS embed.FS

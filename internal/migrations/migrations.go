// Package migrations содержит goose миграции auth и pdf сервисов.
package migrations

import "embed"

//go:embed auth/*.sql
var Auth embed.FS

//go:embed pdf/*.sql
var PDF embed.FS

const (
	AuthDir = "auth"
	PDFDir  = "pdf"
)

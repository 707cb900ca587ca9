// Package inventory embeds the goose migrations of the inventory bounded context.
package inventory

import "embed"

// FS holds the *.sql migrations, applied in file-name order.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the goose migrations shipped with the services.
package migrations

import "embed"

// FS holds one directory of migrations per service.
//
//go:embed order/*.sql
var FS embed.FS

// OrderDir is the directory inside FS holding the order service migrations.
const OrderDir = "order"

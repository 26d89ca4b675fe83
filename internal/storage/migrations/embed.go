package migrations

import "embed"

// PostgresFS holds the embedded PostgreSQL schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the embedded ClickHouse schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

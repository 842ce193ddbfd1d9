// Package all links every built-in sink backend into the binary. Blank
// import it from main packages; library code keeps depending only on
// internal/sink.
package all

import (
	_ "pairgen/internal/sink/jsonl"
	_ "pairgen/internal/sink/mssql"
	_ "pairgen/internal/sink/postgres"
	_ "pairgen/internal/sink/sqlite"
)

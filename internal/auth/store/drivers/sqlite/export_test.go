package sqlite

import "database/sql"

// DB exposes the underlying handle to tests.
func DB(s *Store) *sql.DB { return s.db }

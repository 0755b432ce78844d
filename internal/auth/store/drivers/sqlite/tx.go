package sqlite

import (
	"database/sql"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  gen.New(tx),
	}
}

func (t *txStore) Users() store.Users         { return &usersRepo{q: t.q} }
func (t *txStore) AuditLogs() store.AuditLogs { return &auditLogsRepo{q: t.q} }

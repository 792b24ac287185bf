package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/usuarios/internal/dbx"
	"github.com/dmitrijs2005/usuarios/internal/server/repositories/accounts"
)

// RepositoryManager hands out repositories bound to a connection or
// transaction and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}

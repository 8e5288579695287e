package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/pkg/errorx"
	"github.com/mealforge/recipe-service/pkg/logx"
)

//###################################
//#       Postgres TX Manager       #
//###################################

// PostgresTx - Postgres Transaction manager.
// Implements dbx.Transaction, providing methods to manage a PostgreSQL transaction.
type PostgresTx struct {
	tx   pgx.Tx
	conn *pgxpool.Conn
	txId int64
}

// GetTx - Returns the underlying pgx transaction.
func (tx *PostgresTx) GetTx() any {
	return tx.tx
}

// TxCommit - Commits a transaction and releases the connection to the pool.
func (tx *PostgresTx) TxCommit(ctx context.Context) error {
	defer tx.conn.Release()
	err := tx.tx.Commit(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "error during transaction commit", err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	return nil
}

// TxRollback - Rolls back a transaction and releases the connection to the pool.
// Typically used in a deferred call; rolling back an already committed
// transaction only produces a debug log.
func (tx *PostgresTx) TxRollback(ctx context.Context) {
	err := tx.tx.Rollback(ctx)
	if err != nil {
		logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Rollback transaction %d: %v", tx.txId, err))
	} else {
		logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Rollback transaction: %d", tx.txId))
	}
}

// TxQuery executes a query within the transaction and returns pgx.Rows.
//
// Example Usage:
//
//	rows, err := tx.TxQuery(ctx, "SELECT * FROM recipes WHERE user_id = $1", userID)
//	if err != nil {
//	    return err
//	}
//	defer rows.(pgx.Rows).Close()
func (tx *PostgresTx) TxQuery(ctx context.Context, query string, args ...interface{}) (any, error) {
	rows, err := tx.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// TxExec - Executes a command query under a transaction and returns the number of rows affected.
func (tx *PostgresTx) TxExec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	result, err := tx.tx.Exec(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

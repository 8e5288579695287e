package pgxdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/mealforge/recipe-service/pkg/errorx"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/pkg/errors"
)

//###################################
//#    PostgresDB - dbx manager.    #
//###################################

// PostgresDB - dbx manager.
// It Implements dbx.InstanceManager
type PostgresDB struct {
	pool   *pgxpool.Pool
	dbConf dbx.ConnConfig
}

// SetupPostgresDbManager - setup Postgres DB connection.
func SetupPostgresDbManager(ctx context.Context, dbConf dbx.ConnConfig, preparesStatements ...dbx.PreparedStatement) dbx.InstanceManager {

	pool, err := newConnectionPool(ctx, dbConf, preparesStatements...)
	if err != nil {
		logx.GetLogger().LogFatal(ctx, "connection Pool Error", err)
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new InstanceManager Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return &PostgresDB{
		pool:   pool,
		dbConf: dbConf,
	}
}

func newConnectionPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*pgxpool.Pool, error) {
	poolConfig, err := createConnectionConfiguration(dbConf)
	if err != nil {
		return nil, fmt.Errorf("error: %w", err)
	}

	// Setup prepared statements
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	return pool, nil
}

func createConnectionConfiguration(dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	poolConfig, _ := pgxpool.ParseConfig("")

	if dbConf.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if dbConf.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	if dbConf.Password == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Password is EMPTY")
	}

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password
	poolConfig.MaxConns = int32(runtime.NumCPU()) * dbConf.MaxConn
	poolConfig.MinConns = dbConf.MaxConn

	if dbConf.IsLocalEnv || dbConf.VpcDirectConnection {
		// If local we need to specify the port, if not local
		// the port is defined in the Unix Socket configuration
		// mounted in the container at runtime (5432)
		logx.
			GetLogger().
			LogInfo(context.TODO(), fmt.Sprintf("Connecting to DB on HOST:%s and PORT:%d",
				dbConf.Host,
				uint16(dbConf.Port)))
		poolConfig.ConnConfig.Port = uint16(dbConf.Port)
		poolConfig.ConnConfig.Host = dbConf.Host
	} else {
		logx.GetLogger().LogInfo(context.TODO(), "Connecting to DB trough CLOUD SQL PROXY")
		poolConfig.ConnConfig.Host = fmt.Sprintf("/cloudsql/%s", dbConf.Host)
	}

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparesStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparesStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

func acquireConnectionFromPool(ctx context.Context, db *PostgresDB) (*pgxpool.Conn, error) {
	if db.pool == nil {
		logx.GetLogger().LogPanic(ctx, "error, Connection Pool To DB not initialized", nil)
	}

	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "Error acquiring connection from pool", err)
		return nil, errors.Wrap(err, "Error acquiring connection from pool")
	}

	return conn, nil
}

// GetDbConnPool - get the connection pool.
func (dbm *PostgresDB) GetDbConnPool() (any, error) {
	if dbm.pool == nil {
		return nil, errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	return dbm.pool, nil
}

// GetConnFromPool - get a connection from the pool.
func (dbm *PostgresDB) GetConnFromPool(ctx context.Context) (any, error) {
	return acquireConnectionFromPool(ctx, dbm)
}

// CloseDbConnPool - close dbx connection pool.
func (dbm *PostgresDB) CloseDbConnPool() {
	if dbm.pool != nil {
		dbm.pool.Close()
		logx.GetLogger().LogInfo(context.TODO(), "DB Connection Pool Successfully Closed!")
	}
}

// GetConnectionConfig - get Db Connection config.
func (dbm *PostgresDB) GetConnectionConfig() dbx.ConnConfig {
	return dbm.dbConf
}

// Ping - verify a pooled connection can reach the database.
func (dbm *PostgresDB) Ping(ctx context.Context) error {
	if dbm.pool == nil {
		return errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	if err := dbm.pool.Ping(ctx); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "error pinging database")
	}

	return nil
}

// TxBegin starts a new database transaction and returns a Transaction interface
// that can be used to commit or roll back the transaction.
//
// The method acquires a connection from the connection pool, begins a transaction
// on that connection, and returns a `PostgresTx` struct that implements the
// `dbx.Transaction` interface.
//
// Example Usage:
//
//	tx, err := dbm.TxBegin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.TxRollback(ctx)
//
//	rowsAffected, err := tx.TxExec(ctx, "UPDATE users SET name = $1 WHERE id = $2", name, userID)
//	if err != nil {
//	    return err
//	}
//
//	return tx.TxCommit(ctx)
func (dbm *PostgresDB) TxBegin(ctx context.Context) (pgxTx dbx.Transaction, err error) {
	var conn *pgxpool.Conn
	conn, err = acquireConnectionFromPool(ctx, dbm)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
	}

	// Generate a random Transaction ID
	txId := dbx.GenerateRandomInt64Id()

	return &PostgresTx{tx: tx, conn: conn, txId: txId}, nil
}

// Query executes a SQL query and returns both the resulting rows and the database connection.
//
// The connection is returned so the caller controls its lifecycle: release it back to the
// pool only after the rows have been fully processed.
//
// Usage:
//
//	conn, rows, err := dbm.Query(ctx, "SELECT * FROM recipes WHERE id = $1", 123)
//	if err != nil {
//	    // Handle error
//	}
//	defer rows.(pgx.Rows).Close()
//	defer conn.(*pgxpool.Conn).Release()
func (dbm *PostgresDB) Query(ctx context.Context, query string, args ...interface{}) (conn any, rows any, err error) {
	conn, err = dbm.GetConnFromPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	rows, err = conn.(*pgxpool.Conn).Query(ctx, query, args...)
	if err != nil {
		conn.(*pgxpool.Conn).Release()
		return nil, nil, err
	}

	return conn.(*pgxpool.Conn), rows.(pgx.Rows), nil
}

// Exec executes a SQL query that does not return rows, such as INSERT, UPDATE, or DELETE,
// and returns the number of rows affected. The connection is acquired from the pool and
// released back at the end of the call, regardless of success or failure.
func (dbm *PostgresDB) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	var conn *pgxpool.Conn

	conn, err := acquireConnectionFromPool(ctx, dbm)
	if err != nil {
		return 0, err
	}

	defer conn.Release()

	result, err := conn.Exec(ctx, execQuery, args...)
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error executing query '%s'", execQuery), err)

		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

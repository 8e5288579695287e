package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/pkg/errors"
)

// Pinger - startupx.Pinger implementation for Postgres.
//
// Each Ping opens a fresh single connection, validates it with SELECT 1 and
// closes it again. The connection pool is deliberately not created here: the
// pool constructor is only invoked after the readiness gate reported success.
type Pinger struct {
	dbConf dbx.ConnConfig
}

// NewPinger - Pinger constructor.
func NewPinger(dbConf dbx.ConnConfig) *Pinger {
	return &Pinger{dbConf: dbConf}
}

// Ping - one connection attempt. Any failure (unresolved host, refused
// connection, authentication not yet available) is returned as-is and is
// treated as transient by the caller.
func (p *Pinger) Ping(ctx context.Context) error {
	connCfg, err := pgx.ParseConfig("")
	if err != nil {
		return errors.Wrap(err, "failed to build postgres connect config")
	}

	connCfg.Host = p.dbConf.Host
	connCfg.Port = uint16(p.dbConf.Port)
	connCfg.Database = p.dbConf.DBName
	connCfg.User = p.dbConf.User
	connCfg.Password = p.dbConf.Password

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return err
	}

	defer conn.Close(ctx)

	var one int
	if err := conn.QueryRow(ctx, `select 1`).Scan(&one); err != nil {
		return errors.Wrap(err, "connection established but validation query failed")
	}

	if one != 1 {
		return fmt.Errorf("unexpected validation result: %d", one)
	}

	return nil
}

package migratex

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/mealforge/recipe-service/pkg/errorx"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/mealforge/recipe-service/pkg/startupx"
)

// Runner applies schema migrations from an embedded filesystem.
//
// Migrations run only after the readiness gate reported the database
// reachable; the runner itself performs a single connection and does not
// retry.
type Runner struct {
	dbConf dbx.ConnConfig
	fsys   fs.FS
	dir    string
}

// NewRunner - Runner constructor. dir is the path of the migration files
// inside fsys (usually "migrations").
func NewRunner(dbConf dbx.ConnConfig, fsys fs.FS, dir string) *Runner {
	return &Runner{dbConf: dbConf, fsys: fsys, dir: dir}
}

// Up - apply all pending migrations. A database already at the latest
// version is a success.
func (r *Runner) Up(ctx context.Context) error {
	source, err := iofs.New(r.fsys, r.dir)
	if err != nil {
		return errorx.NewStartupErrorWrapper(err, "error loading migration sources from '%s'", r.dir)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, r.databaseURL())
	if err != nil {
		return errorx.NewStartupErrorWrapper(err, "error initializing migration engine")
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logx.GetLogger().LogWarning(ctx, "error closing migration source", srcErr)
		}
		if dbErr != nil {
			logx.GetLogger().LogWarning(ctx, "error closing migration db connection", dbErr)
		}
	}()

	err = m.Up()
	switch {
	case err == nil:
		version, dirty, vErr := m.Version()
		if vErr == nil {
			logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Schema migrated to version %d (dirty=%t)", version, dirty))
		}

		return nil
	case err == migrate.ErrNoChange:
		logx.GetLogger().LogInfo(ctx, "Schema already up to date")
		return nil
	default:
		return errorx.NewStartupErrorWrapper(err, "error applying migrations")
	}
}

// Step - expose the runner as a startup sequence step.
func (r *Runner) Step() startupx.Step {
	return startupx.Step{Name: "migrate-db", Run: r.Up}
}

func (r *Runner) databaseURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(r.dbConf.User),
		url.QueryEscape(r.dbConf.Password),
		r.dbConf.Host,
		r.dbConf.Port,
		r.dbConf.DBName)
}

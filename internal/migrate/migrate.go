// Package migrate applies embedded SQL migrations.
package migrate

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "github.com/lib/pq"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/migrations"
)

// Up runs all pending migrations from the embedded filesystem.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

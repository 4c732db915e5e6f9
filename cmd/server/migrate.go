package main

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	auth "github.com/Isra8Rubio/CocktailDockerizado"
	"github.com/uptrace/bun"
)

const migrationsDir = "data/sql/migrations"

// runMigrations applies the embedded schema migrations in lexical order.
// Applied versions are tracked in schema_migrations so restarts are
// idempotent.
func runMigrations(ctx context.Context, db *bun.DB, logger appLogger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS "schema_migrations" (
		"name" VARCHAR NOT NULL PRIMARY KEY,
		"applied_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return err
	}

	sub, err := fs.Sub(auth.GetMigrationsFS(), migrationsDir)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := migrationApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		script, err := fs.ReadFile(sub, name)
		if err != nil {
			return err
		}

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("migration %s: %w", name, err)
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO "schema_migrations" ("name") VALUES (?);`, name)
			return err
		})
		if err != nil {
			return err
		}
		logger.Info("applied %s", name)
	}

	return nil
}

func migrationApplied(ctx context.Context, db *bun.DB, name string) (bool, error) {
	var count int
	err := db.NewRaw(`SELECT COUNT(*) FROM "schema_migrations" WHERE "name" = ?`, name).
		Scan(ctx, &count)
	return count > 0, err
}

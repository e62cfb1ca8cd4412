// Package migration applies versioned schema changes to a SQL database.
//
// Migration files are named {version}_{description}.sql and are usually embedded in
// the store package that owns them. Applied versions are tracked in a
// schema_migrations table so each file runs once.
//
//	migrations, err := migration.Load(files, "migrations")
//	if err != nil {
//		return err
//	}
//	err = migration.Run(ctx, migration.NewExecutor(db, migration.SQLite), migrations, logger)
package migration

// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations
// from an fs.FS, so packages can ship their schema embedded next to the code
// that queries it.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, identity.Migrations, identity.MigrationsDir, cfg, log); err != nil {
//	    return err
//	}
package pg

// Package database opens the comment store behind the wall.
//
// Three backends are supported and chosen by Config.Type:
//
//   - sqlite: the default, a single file (or ":memory:") via modernc.org/sqlite
//   - postgres: a pgx connection pool
//   - mongo: a MongoDB collection; the database name is the URI path
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "wally.db",
//	    Tables:      wally.Tables{Comments: "wally_comments"},
//	    AutoMigrate: true,
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	comments := db.GetRepo()
//
// Connect only opens the backend. Open also pings it, runs migrations when
// AutoMigrate is set and validates the schema.
package database

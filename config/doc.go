// Package config loads and validates wally's configuration.
//
// YAML files, environment variables and CLI flags are merged with viper and
// the result is checked with go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s), merged left-to-right
//  3. Environment variables (WALLY_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with the WALLY_ prefix:
//   - server.port → WALLY_SERVER_PORT
//   - server.root → WALLY_SERVER_ROOT
//   - database.dsn → WALLY_DATABASE_DSN
//
// # Validation
//
//   - server.port and admin.port must be 0-65535 (0 picks a free port)
//   - server.root must be an existing directory
//   - server.index entries are plain file names
//   - wall.path must start with "/"
//   - database.type must be sqlite, postgres or mongo
//   - database.tables.comments must be a valid identifier
//   - log.level must be debug, info, warn, or error
package config

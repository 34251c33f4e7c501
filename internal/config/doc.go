// Package config loads and validates application configuration.
//
// Configuration comes from environment variables, grouped by prefix:
//
//   - SERVER_*: HTTP listener, timeouts, CORS origins, proxy trust
//   - DB_*: SurrealDB connection
//   - JWT_*: session token secret, issuer and lifetime
//   - RATE_LIMIT_*: register/login limit per client
//   - DEMO_USER_EMAIL: optional read-only demo account
//
// Load applies defaults suitable for local development; Validate reports
// every problem at once:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

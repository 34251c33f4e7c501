// Command token mints a session token for an existing user id, signed with
// the server's JWT settings. It is meant for local debugging with curl.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/forgo/jobtrack/internal/config"
	"github.com/forgo/jobtrack/pkg/jwt"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.String("user", "", "User record id the token is issued for (e.g. user:abc123)")
	name := fs.String("name", "Developer", "Display name carried in the token")
	lifetime := fs.Duration("exp", 0, "Token lifetime (defaults to JWT_LIFETIME)")
	outputJSON := fs.Bool("json", false, "Output as JSON")
	baseURL := fs.String("url", "http://localhost:8080", "API base URL used in the usage hint")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *lifetime <= 0 {
		*lifetime = cfg.JWT.Lifetime
	}

	jwtService, err := jwt.NewService(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: *lifetime,
	})
	if err != nil {
		return fmt.Errorf("creating JWT service: %w", err)
	}

	token, err := jwtService.Sign(*userID, *name)
	if err != nil {
		return err
	}

	if *outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"token":      token,
			"token_type": "Bearer",
			"expires_in": int(lifetime.Seconds()),
			"user_id":    *userID,
			"name":       *name,
		})
	}

	fmt.Fprintln(out, "Token Generated")
	fmt.Fprintln(out, "===============")
	fmt.Fprintf(out, "User ID:  %s\n", *userID)
	fmt.Fprintf(out, "Name:     %s\n", *name)
	fmt.Fprintf(out, "Expires:  %s\n", time.Now().Add(*lifetime).Format(time.RFC3339))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Token:")
	fmt.Fprintln(out, token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  curl -H 'Authorization: Bearer %s' %s/api/v1/jobs\n", token, *baseURL)
	return nil
}

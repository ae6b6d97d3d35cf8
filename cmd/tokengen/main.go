// Command tokengen mints an access and refresh token pair for a user ID,
// signed with the configured JWT secret. Accounts live in an external
// identity system; this is for local development and operations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/service/auth"
)

type tokenPair struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	userFlag := fs.String("user", "", "User ID to mint tokens for (random when empty)")
	configPath := fs.String("config", "", "Path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}
	return mint(context.Background(), cfg.Auth, *userFlag, out)
}

func mint(ctx context.Context, cfg config.AuthConfig, rawUserID string, out io.Writer) error {
	userID := uuid.New()
	if rawUserID != "" {
		parsed, err := uuid.Parse(rawUserID)
		if err != nil {
			return fmt.Errorf("invalid user ID %q: %w", rawUserID, err)
		}
		userID = parsed
	}

	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}

	pair := tokenPair{UserID: userID}
	if pair.AccessToken, err = svc.GenerateToken(ctx, userID); err != nil {
		return err
	}
	if pair.RefreshToken, err = svc.GenerateRefreshToken(ctx, userID); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(pair)
}

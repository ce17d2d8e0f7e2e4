// Command token issues and revokes API access tokens.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/enrolment/backend/internal/infrastructure/auth"
	"github.com/enrolment/backend/internal/infrastructure/cache"
	"github.com/enrolment/backend/internal/infrastructure/config"
	"github.com/enrolment/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		roles    string
		ttl      time.Duration
		logLevel string
	)
	flag.StringVar(&roles, "roles", "", "Comma separated roles granted by the token")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to the configured access token expiration)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	switch args[0] {
	case "issue":
		token, claims, err := jwtService.Generate(args[1], splitRoles(roles), ttl)
		if err != nil {
			log.Fatal("Failed to issue token", zap.Error(err))
		}
		log.Info("Token issued",
			zap.String("subject", claims.Subject),
			zap.String("jti", claims.ID),
			zap.Strings("roles", claims.Roles),
			zap.Time("expires_at", claims.ExpiresAt.Time),
		)
		fmt.Println(token)

	case "revoke":
		claims, err := jwtService.Validate(args[1])
		if err != nil {
			log.Fatal("Token is not valid", zap.Error(err))
		}
		if !cfg.Redis.Enabled() {
			log.Fatal("Revocation requires Redis (set ENROL_REDIS_HOST)")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = client.Close()
		}()

		remaining := claims.RemainingTTL(time.Now())
		if err := auth.NewRedisTokenBlacklist(client).Revoke(ctx, claims.ID, remaining); err != nil {
			log.Fatal("Failed to revoke token", zap.Error(err))
		}
		log.Info("Token revoked",
			zap.String("subject", claims.Subject),
			zap.String("jti", claims.ID),
			zap.Duration("remaining", remaining),
		)

	default:
		log.Error("Unknown command", zap.String("command", args[0]))
		printUsage()
		os.Exit(1)
	}
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Access token tool

Usage:
  token [flags] <command> <argument>

Commands:
  issue <subject>   Print a signed access token for subject
  revoke <token>    Blacklist a token until it expires

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  ENROL_JWT_SECRET, ENROL_JWT_ISSUER, ENROL_JWT_ACCESS_TOKEN_EXPIRATION
  ENROL_REDIS_HOST, ENROL_REDIS_PORT, ENROL_REDIS_PASSWORD (revoke only)
`)
}

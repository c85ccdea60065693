package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/infrastructure/logger"
	"github.com/KarthikRajS32/vsurvey/internal/maintenance"
	"github.com/KarthikRajS32/vsurvey/internal/repository"
	"github.com/KarthikRajS32/vsurvey/pkg/config"
	"github.com/KarthikRajS32/vsurvey/pkg/database"
)

// vsurvey-admin runs offline maintenance against the same stores the
// server uses. It is meant to be run as a single instance; the
// duplicate sweep assumes no concurrent sweep is mutating the same
// assignments.

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "cleanup":
		runCleanup()
	case "recommend":
		runRecommend()
	case "token":
		runToken(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: vsurvey-admin <command>

Commands:
  cleanup    remove duplicate survey assignments across all clients
  recommend  print operational recommendations for assignment integrity
  token      mint a bearer token for an existing account (-email, -ttl)
  help       show this help`)
}

func runCleanup() {
	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	log := logger.NewLogger(cfg.LogLevel)

	store, err := docstore.NewClient(cfg.RedisURL, log)
	if err != nil {
		fatal("connect document store: %v", err)
	}
	defer store.Close()

	clientRepo := repository.NewClientRepository(store, log)
	assignmentRepo := repository.NewAssignmentRepository(store, log)
	sweeper := maintenance.NewSweeper(clientRepo, assignmentRepo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep finished with errors: %v\n", err)
	}
	fmt.Printf("removed %d duplicate assignment(s)\n", removed)
	if err != nil {
		os.Exit(1)
	}
}

func runRecommend() {
	fmt.Println("Assignment integrity recommendations:")
	for i, rec := range maintenance.Recommendations() {
		fmt.Printf("  %d. %s\n", i+1, rec)
	}
}

func runToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	email := fs.String("email", "", "account email to mint a token for")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	fs.Parse(args)

	if *email == "" {
		fatal("token: -email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, log)
	if err != nil {
		fatal("connect identity database: %v", err)
	}
	defer pool.Close()

	provider := identity.NewProvider(pool.GetDB(), cfg.Credentials, log)
	account, err := provider.GetByEmail(ctx, *email)
	if err != nil {
		fatal("lookup account: %v", err)
	}

	token, expiresAt, err := provider.MintToken(account, *ttl)
	if err != nil {
		fatal("mint token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-streaming-store/internal/admin"
	"github.com/ariefcatur/go-streaming-store/internal/config"
	"github.com/ariefcatur/go-streaming-store/internal/feed"
	"github.com/ariefcatur/go-streaming-store/internal/postgres"
	"github.com/ariefcatur/go-streaming-store/internal/shop"
)

const usage = "expected 'hash-secret', 'migrate' or 'add-user' subcommand"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "hash-secret":
		hashSecret(os.Args[2:])
	case "migrate":
		runMigrate()
	case "add-user":
		addUser(os.Args[2:])
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func hashSecret(args []string) {
	cmd := flag.NewFlagSet("hash-secret", flag.ExitOnError)
	secret := cmd.String("secret", "", "Admin gate secret to hash")
	_ = cmd.Parse(args)
	if *secret == "" {
		fmt.Println("secret is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}
	h, err := admin.HashSecret(*secret)
	if err != nil {
		log.Fatalf("hash secret: %v", err)
	}
	fmt.Printf("ADMIN_SECRET_HASH=%s\n", h)
}

func runMigrate() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := postgres.Migrate(cfg.PostgresDSN, config.SetupLogger(cfg)); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func addUser(args []string) {
	cmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	var r shop.Registration
	cmd.StringVar(&r.Username, "username", "", "Username for the new customer")
	cmd.StringVar(&r.Password, "password", "", "Password for the new customer")
	cmd.StringVar(&r.Name, "name", "", "Full name")
	cmd.StringVar(&r.Email, "email", "", "Email address")
	cmd.StringVar(&r.Phone, "phone", "", "Phone number without country code")
	cmd.StringVar(&r.CountryCode, "country-code", shop.DefaultCountryCode, "Phone country code")
	_ = cmd.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// the running api reloads users on its own reads, so no change event is needed
	accounts := &shop.Accounts{Store: &shop.Repo{DB: db}, Publisher: feed.Discard{}, Log: logger}
	u, err := accounts.Register(ctx, r)
	if err != nil {
		log.Fatalf("add user: %v", err)
	}
	fmt.Printf("User '%s' created with id %s.\n", u.Username, u.ID)
}

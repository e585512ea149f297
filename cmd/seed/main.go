package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"ms-users/internal/config"
	"ms-users/internal/database"
	"ms-users/internal/logger"
	"ms-users/internal/models"
	user_db "ms-users/internal/users/db"
)

var sampleUsers = []models.UserInput{
	{Name: "Alice Wonderland", Email: "alice@example.com"},
	{Name: "Bob Builder", Email: "bob@example.com"},
	{Name: "Carol Danvers", Email: "carol@example.com"},
}

type userCreator interface {
	CreateUser(ctx context.Context, name, email string) (*models.User, error)
}

// seedUsers inserts each input and returns how many rows were added.
// Emails already present are skipped.
func seedUsers(ctx context.Context, store userCreator, inputs []models.UserInput, log *logger.Logger) (int, error) {
	inserted := 0
	for _, in := range inputs {
		user, err := store.CreateUser(ctx, in.Name, in.Email)
		if errors.Is(err, models.ErrEmailExists) {
			log.Info("SEED", fmt.Sprintf("Skipping %s, already exists", in.Email))
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", in.Email, err)
		}
		log.LogUser("SEED", user.ID, user.Email)
		inserted++
	}
	return inserted, nil
}

func main() {
	reset := flag.Bool("reset", false, "drop the users table before seeding")
	flag.Parse()

	_ = config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWriter(os.Stdout)
	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	store := &user_db.DB{Bun: bunDB}

	if *reset {
		log.Info("SEED", "Dropping users table...")
		if err := store.DropSchema(ctx); err != nil {
			log.Fatal("SEED", err.Error())
		}
	}

	log.Info("SEED", "Creating users table...")
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatal("SEED", err.Error())
	}

	n, err := seedUsers(ctx, store, sampleUsers, log)
	if err != nil {
		log.Fatal("SEED", err.Error())
	}
	log.Info("SEED", fmt.Sprintf("✅ Done, %d users inserted", n))
}

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/mageytel/mageypack-service/internal/config"
	"github.com/mageytel/mageypack-service/internal/database"
	"github.com/mageytel/mageypack-service/internal/repository"
)

// Seeds an operator account.  Passwords are bcrypt-hashed by the user
// repository; there is no other way to create users.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "login email for the new user")
	password := flag.String("password", "", "plain password (hashed before storage)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := repository.NewUserRepo(db).Create(ctx, *email, *password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	log.Printf("created user id=%d email=%s", id, *email)
}

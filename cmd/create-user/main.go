// CLI tool to create a cloud account with a bcrypt-hashed password and a
// fresh uid that keys the account's mirror documents.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")

	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	uid := uuid.NewString()

	var accountID int
	err = conn.QueryRow(context.Background(),
		`INSERT INTO cloud_accounts (username, email, password, uid)
		 VALUES (@username, NULLIF(@email, ''), @password, @uid) RETURNING id`,
		pgx.NamedArgs{"username": username, "email": email, "password": string(hash), "uid": uid},
	).Scan(&accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nAccount created successfully!\n")
	fmt.Printf("  ID:       %d\n", accountID)
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  UID:      %s\n", uid)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

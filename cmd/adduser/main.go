package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"expense-service/internal/auth"
	"expense-service/internal/storage"

	"golang.org/x/term"
)

const (
	defaultDriver = storage.DriverSQLite
	defaultDSN    = "expenses.db"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	firstName := fs.String("firstname", "", "First name")
	lastName := fs.String("lastname", "", "Last name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", defaultDriver, "Database driver: pgx, postgres or sqlite")
	dsn := fs.String("dsn", defaultDSN, "Database connection string or SQLite file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *email == "" {
		missing = append(missing, "email")
	}
	if *firstName == "" {
		missing = append(missing, "firstname")
	}
	if *lastName == "" {
		missing = append(missing, "lastname")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> -firstname <name> -lastname <name> [-password <password>] [-driver <driver>] [-dsn <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// Environment overrides apply only when the flags keep their defaults.
	if v := os.Getenv("DATABASE_DRIVER"); v != "" && *driver == defaultDriver {
		*driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && *dsn == defaultDSN {
		*dsn = v
	}

	db, err := storage.NewDB(*driver, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if existing, err := db.GetUserByEmail(ctx, *email); err == nil && existing != nil {
		return fmt.Errorf("user %s already exists", *email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := db.CreateUser(ctx, *email, hash, *firstName, *lastName)
	if errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("user %s already exists", *email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	total, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	fmt.Fprintf(stdout, "User %s created successfully with ID %d (%d users total)\n", user.Email, user.ID, total)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Non-terminal input such as pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

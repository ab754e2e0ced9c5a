package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/kobobridge/internal/config"
	"github.com/mrlokans/kobobridge/internal/database"
)

type CreateUserCommand struct {
	Username     string
	APIKey       string
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.APIKey, "api-key", "", "Audiobookshelf API key used for this account's syncs (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a bridge account tied to an Audiobookshelf API key.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -api-key abs_xxx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -api-key abs_xxx -db ./my-bridge.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Username) == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(cmd.APIKey) == "" {
		fs.Usage()
		return fmt.Errorf("api-key is required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	user, err := db.CreateUser(cmd.Username, cmd.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id %s)\n", user.Username, user.ID)
	fmt.Printf("Register a device for it with: %s register-device -username %s\n", os.Args[0], user.Username)

	return nil
}

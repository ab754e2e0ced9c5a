package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/kobobridge/internal/config"
	"github.com/mrlokans/kobobridge/internal/database"
)

type RegisterDeviceCommand struct {
	Username     string
	DatabasePath string
}

func NewRegisterDeviceCommand() *RegisterDeviceCommand {
	return &RegisterDeviceCommand{}
}

func (cmd *RegisterDeviceCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register-device", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Account the device belongs to (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register-device [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Register an e-reader for an existing account and print its API endpoint token.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s register-device -username alice\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s register-device -username alice -db ./my-bridge.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Username) == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}

	return nil
}

func (cmd *RegisterDeviceCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	user, err := db.GetUserByUsername(cmd.Username)
	if err != nil {
		return fmt.Errorf("failed to look up user %q: %w", cmd.Username, err)
	}

	device, err := db.RegisterDevice(user.ID)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	fmt.Printf("Registered device %s for %q\n", device.ID, user.Username)
	fmt.Printf("Point the e-reader's api_endpoint at: <public-url>/kobo/%s\n", device.ID)

	return nil
}

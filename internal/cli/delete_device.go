package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/kobobridge/internal/config"
	"github.com/mrlokans/kobobridge/internal/database"
)

type DeleteDeviceCommand struct {
	DeviceID     string
	DatabasePath string
}

func NewDeleteDeviceCommand() *DeleteDeviceCommand {
	return &DeleteDeviceCommand{}
}

func (cmd *DeleteDeviceCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete-device", flag.ExitOnError)

	fs.StringVar(&cmd.DeviceID, "device", "", "Device token to delete (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s delete-device [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete a device and its sync history. The next sync from that token fails auth.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s delete-device -device 6c2a1f7e-93dd-4f25-8d7a-0b6f25c5a8d1\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.DeviceID) == "" {
		fs.Usage()
		return fmt.Errorf("device is required")
	}

	return nil
}

func (cmd *DeleteDeviceCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.GetDeviceByID(cmd.DeviceID); err != nil {
		return fmt.Errorf("failed to look up device %s: %w", cmd.DeviceID, err)
	}

	if err := db.DeleteDevice(cmd.DeviceID); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	fmt.Printf("Deleted device %s and its sync records\n", cmd.DeviceID)

	return nil
}

// Command generate_demo creates a demo database with a sample account and
// registered devices, so the bridge can be poked at without a real reader.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/mrlokans/kobobridge/internal/database"
	"github.com/mrlokans/kobobridge/internal/database/syncrecords"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	user, err := db.CreateUser("demo", "demo-audiobookshelf-api-key")
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created user %q (id %s)", user.Username, user.ID)

	records := syncrecords.NewRepository(db.DB)

	for _, name := range []string{"living room Libra", "travel Clara"} {
		device, err := db.RegisterDevice(user.ID)
		if err != nil {
			log.Fatalf("Failed to register device: %v", err)
		}
		log.Printf("Registered %s: point its api_endpoint at /kobo/%s", name, device.ID)

		// Mark a couple of items as already synced so the first demo sync
		// exercises the change detector instead of a full dump.
		for _, itemID := range []string{"li_demo_war_and_peace", "li_demo_walden"} {
			if err := records.Replace(device.ID, itemID, time.Now().UTC()); err != nil {
				log.Printf("Failed to seed sync record for %s: %v", itemID, err)
			}
		}
	}

	log.Println("Demo database generated successfully!")
}

package http

import (
	"github.com/mrlokans/kobobridge/internal/abs"
	"github.com/mrlokans/kobobridge/internal/database"
	"github.com/mrlokans/kobobridge/internal/sync"
)

// RouterConfig carries every dependency the router needs. Passing one
// struct keeps NewRouter's signature stable as controllers grow.
type RouterConfig struct {
	Database    *database.Database
	SyncService *sync.Service
	AbsClient   *abs.Client
	// AdminAPIKey authorizes the admin listing endpoints against the
	// library backend; when empty those endpoints answer 502.
	AdminAPIKey string
	// PublicURL is baked into the download links served to devices.
	PublicURL string
	Version   string
}

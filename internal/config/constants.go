package config

const (
	// DefaultDatabasePath is the default path for the bridge database
	DefaultDatabasePath = "./kobobridge.db"

	// DefaultKoboStoreURL is the real Kobo store backend the sync proxy
	// forwards to
	DefaultKoboStoreURL = "https://storeapi.kobo.com"

	// DefaultSyncItemLimit caps how many entitlements one sync response
	// carries; devices page through the rest via the continuation token
	DefaultSyncItemLimit = 100
)

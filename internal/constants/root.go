package constants

const (
	AppName            = "mealplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/mealplan/mealplan.db"
	Version            = "v0.1.0"

	// KeyringConfigValue selects the connection string stored in the OS keyring.
	KeyringConfigValue = "keyring"

	// Environment variables
	EnvDBConnection = "MEALPLAN_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "mealplan-"
	BackupFileSuffix = ".db"

	// Log constants
	LogDirName       = "logs"
	LogFileName      = "mealplan.log"
	LogMaxSizeMB     = 10
	LogMaxBackups    = 3
	LogMaxAgeDays    = 28
	StoreFileVersion = 1

	// ShoppingListDocID is the id of the single persisted shopping list document.
	ShoppingListDocID = "current"
)

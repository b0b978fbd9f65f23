package backend

import (
	"fmt"

	"spendlog/internal/config"
	gsheet "spendlog/internal/sheets/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Sheets: SheetsOptions(appConfig),
	}, nil
}

// SheetsOptions extracts the spreadsheet settings shared by the server and the sync worker.
func SheetsOptions(appConfig *config.Config) gsheet.Options {
	return gsheet.Options{
		SpreadsheetID:      appConfig.SheetID,
		UsersSheet:         appConfig.UsersSheetName,
		ExpensesSheet:      appConfig.ExpensesSheetName,
		ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		ServiceAccountFile: appConfig.GoogleServiceAccountFile,
		OAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
		OAuthClientFile:    appConfig.GoogleOAuthClientFile,
		OAuthTokenJSON:     appConfig.GoogleOAuthTokenJSON,
		OAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
	}
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	// a sheets backend without a spreadsheet id still starts; requests report 502
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, SQLiteBackend}
}

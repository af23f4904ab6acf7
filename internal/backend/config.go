package backend

import (
	"fmt"

	"finsmart/internal/config"
)

// FromAppConfig converts application configuration to backend configuration.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		Type:                  BackendType(cfg.DataBackend),
		SQLiteDBPath:          cfg.SQLiteDBPath,
		AMQPURL:               cfg.AMQPURL,
		AMQPExchange:          cfg.AMQPExchange,
		AMQPQueue:             cfg.AMQPQueue,
		GoogleSpreadsheetID:   cfg.GoogleSpreadsheetID,
		GoogleSheetName:       cfg.GoogleSheetName,
		GoogleCredentialsFile: cfg.GoogleCredentialsFile,
		GoogleCredentialsJSON: cfg.GoogleCredentialsJSON,
		ArchiveCSVPath:        cfg.ArchiveCSVPath,
	}
}

// Validate checks that the configuration names a usable backend. Detailed
// field validation happens in config.Config.Validate; this guards direct
// construction.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type != MemoryBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("backend %s requires a sqlite database path", c.Type)
	}
	if c.Type == SheetsBackend && c.GoogleSpreadsheetID == "" {
		return fmt.Errorf("sheets backend requires a spreadsheet id")
	}
	return nil
}

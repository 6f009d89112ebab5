package config

import "go.uber.org/zap"

// NewLogger baut den Prozess-Logger; LOG_LEVEL=debug liefert die Development-Konfiguration.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(c.LogLevel); err == nil {
		zcfg.Level = lvl
	}
	return zcfg.Build()
}

package config

import "time"

// Application constants
const (
	AppName    = "RetailPulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. RETAILPULSE_PIPELINE_PROFILE
	EnvPrefix = "RETAILPULSE"

	// Input sources
	SourceDir         = "dir"
	SourceWorkbook    = "workbook"
	SourceObjectStore = "objectstore"

	// Cleaning profiles
	ProfileStandard = "standard"
	ProfileLegacy   = "legacy"

	// Shipment status modes; empty means "use the profile's mode"
	StatusModeEnum    = "enum"
	StatusModeKeyword = "keyword"

	// Default locations, relative to the working directory
	DefaultDatasetDir  = "downloads"
	DefaultReportPath  = "response.json"
	DefaultLogFilePath = "logs/retailpulse.log"

	// Server defaults
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimitRPS    = 10
	DefaultRateLimitBurst  = 20
)

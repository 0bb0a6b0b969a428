// Package config provides configuration loading for the RetailPulse binaries.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values (Default)
//	2. YAML file: -config flag, else config.yaml or configs/config.yaml
//	3. Environment variables (RETAILPULSE_*)
//
// # Environment Variables
//
// Variables follow the section layout of Config:
//
//	RETAILPULSE_INPUT_SOURCE=objectstore
//	RETAILPULSE_OBJECT_STORE_BUCKET=datasets
//	RETAILPULSE_PIPELINE_PROFILE=legacy
//	RETAILPULSE_OUTPUT_REPORT_PATH=response.json
//	RETAILPULSE_LOGGING_LEVEL=debug
//
// The loaded Config is checked with go-playground/validator struct tags.
package config

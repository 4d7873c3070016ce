// Package config holds the settings structs of scan-warden: logger, database,
// report connector, redis, scanners, SLA windows and report signing.
//
// REST settings come from a YAML file overlaid by SCANWARDEN_* environment
// variables through viper. Every settings struct validates itself with
// go-playground/validator.
package config

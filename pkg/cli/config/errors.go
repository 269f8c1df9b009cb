package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = goerr.New("configuration file not found")
	ErrInvalidConfig       = goerr.New("invalid configuration")
	ErrInvalidMatrix       = goerr.New("invalid risk matrix")
	ErrInvalidMissionFile  = goerr.New("invalid mission file")
	ErrUnsupportedLocation = goerr.New("unsupported configuration location")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	SectionKey    = "section"
	IndexKey      = "index"
)

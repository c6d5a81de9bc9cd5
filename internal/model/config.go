package model

// ConfigType is the coarse build flavor of a configuration.
type ConfigType string

const (
	ConfigDebug   ConfigType = "debug"
	ConfigRelease ConfigType = "release"
)

// Config is one project-wide build configuration.
type Config struct {
	Name     string
	Type     ConfigType
	Settings map[string]any
}

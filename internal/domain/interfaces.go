package domain

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetModelConfig() *ModelConfig
	GetLoggingConfig() *LoggingConfig
	Reload() error
	Validate() error
	Environment() string
	IsProduction() bool
	IsDevelopment() bool
}

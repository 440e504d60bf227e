package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. MEDIBOOK_DATABASE_HOST.
	EnvPrefix = "MEDIBOOK"

	AppName     = "Medibook"
	ServiceName = "medibook_backend"
)

package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "STAGELINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STAGELINK_DB_DSN"
	EnvDBHost = "STAGELINK_DB_HOST"
	EnvDBUser = "STAGELINK_DB_USER"
	EnvDBName = "STAGELINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

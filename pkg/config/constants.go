package config

const (
	// EnvPrefix is the envconfig prefix for every setting.
	EnvPrefix = "anacreon"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ANACREON_DB_DSN"
	EnvDBHost = "ANACREON_DB_HOST"
	EnvDBUser = "ANACREON_DB_USER"
	EnvDBName = "ANACREON_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Database Database `envPrefix:"DATABASE_"`
	Auth     Auth     `envPrefix:"AUTH_"`
}

type Database struct {
	// mysql DSN; when empty the server falls back to a local sqlite file
	URL        string `env:"URL"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"storefront.db"`
}

type Auth struct {
	// HMAC secret for verifying session tokens; issuance lives in the
	// credential service, not here
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

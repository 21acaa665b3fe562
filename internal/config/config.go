package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`
	ModelPath string `env:"MODEL_PATH,required,notEmpty"`

	DatabaseURL   string `env:"DATABASE_URL"`
	DBMaxConns    int    `env:"DB_MAX_CONNS" envDefault:"10"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MemoryMaxEntries int    `env:"MEMORY_MAX_ENTRIES" envDefault:"500"`
	MemorySessionKey string `env:"MEMORY_SESSION_KEY" envDefault:"default"`
	PolicyEnabled    bool   `env:"POLICY_ENABLED" envDefault:"false"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLHours  int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"168"`
	APIClientID         string `env:"API_CLIENT_ID"`
	APIClientSecretHash string `env:"API_CLIENT_SECRET_HASH"`
	APIClientScopes     string `env:"API_CLIENT_SCOPES" envDefault:"decisions:read decisions:write"`

	AuthRateLimitMax           int `env:"AUTH_RATE_LIMIT_MAX" envDefault:"10"`
	AuthRateLimitWindowSeconds int `env:"AUTH_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`

	GeocoderBaseURL    string `env:"GEOCODER_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	OverpassURL        string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	DestinationRadiusM int    `env:"DESTINATION_RADIUS_M" envDefault:"5000"`
	UserAgent          string `env:"USER_AGENT" envDefault:"TravelAgent/1.0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

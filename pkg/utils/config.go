package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Redis    RedisConfig
	Cart     CartConfig
	CORS     CORSConfig
	Client   ClientConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	WebRoot string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type AuthConfig struct {
	SessionTTLHours int
	CookieName      string
	CookieSecure    bool
	PublicPrefixes  []string
	JanitorMinutes  int
}

type OAuthConfig struct {
	Provider     string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether an OAuth provider is configured.
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CartConfig struct {
	Storage    string // redis | postgres | memory
	RecordName string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ClientConfig struct {
	BaseURL       string
	RetryAttempts int
}

// LoadConfig reads an env-style file at path (".env" when empty) and overlays
// the process environment on top of it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("WEB_ROOT", "web/dist")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("SESSION_COOKIE", "session_token")
	v.SetDefault("SESSION_JANITOR_MINUTES", 60)
	v.SetDefault("OAUTH_PROVIDER", "google")
	v.SetDefault("OAUTH_SCOPES", "openid,email,profile")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CART_STORAGE", "memory")
	v.SetDefault("CART_RECORD_NAME", "cart-storage")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_RETRY_ATTEMPTS", 3)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
			WebRoot: v.GetString("WEB_ROOT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Auth: AuthConfig{
			SessionTTLHours: v.GetInt("SESSION_TTL_HOURS"),
			CookieName:      v.GetString("SESSION_COOKIE"),
			CookieSecure:    v.GetBool("SESSION_COOKIE_SECURE"),
			PublicPrefixes:  splitList(v.GetString("PUBLIC_PREFIXES")),
			JanitorMinutes:  v.GetInt("SESSION_JANITOR_MINUTES"),
		},
		OAuth: OAuthConfig{
			Provider:     v.GetString("OAUTH_PROVIDER"),
			ClientID:     v.GetString("OAUTH_CLIENT_ID"),
			ClientSecret: v.GetString("OAUTH_CLIENT_SECRET"),
			AuthURL:      v.GetString("OAUTH_AUTH_URL"),
			TokenURL:     v.GetString("OAUTH_TOKEN_URL"),
			UserInfoURL:  v.GetString("OAUTH_USERINFO_URL"),
			RedirectURL:  v.GetString("OAUTH_REDIRECT_URL"),
			Scopes:       splitList(v.GetString("OAUTH_SCOPES")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cart: CartConfig{
			Storage:    v.GetString("CART_STORAGE"),
			RecordName: v.GetString("CART_RECORD_NAME"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Client: ClientConfig{
			BaseURL:       v.GetString("API_BASE_URL"),
			RetryAttempts: v.GetInt("API_RETRY_ATTEMPTS"),
		},
	}

	return config, nil
}

// env files carry lists as comma separated values
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is read once at startup and passed into each component; nothing
// reads the environment after Load returns.
type Config struct {
	Port int

	LoginPassword      string
	AccessTokenSecret  string
	RefreshTokenSecret string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDContact    string

	ClientURL string
	DataFile  string
}

var required = []string{
	"LOGIN_PASSWORD",
	"JWT_SECRET",
	"REFRESH_TOKEN_SECRET",
	"VAPID_PUBLIC_KEY",
	"VAPID_PRIVATE_KEY",
	"VAPID_CONTACT_EMAIL",
	"CLIENT_URL",
}

// Load builds the configuration from the environment. Any missing required
// variable makes startup fail; secrets have no defaults.
func Load() (Config, error) {
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := Config{
		Port:               3000,
		LoginPassword:      os.Getenv("LOGIN_PASSWORD"),
		AccessTokenSecret:  os.Getenv("JWT_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		VAPIDPublicKey:     os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:    os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDContact:       normalizeContact(os.Getenv("VAPID_CONTACT_EMAIL")),
		ClientURL:          os.Getenv("CLIENT_URL"),
		DataFile:           "data.json",
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.DataFile = v
	}

	return cfg, nil
}

// normalizeContact prefixes bare addresses with mailto: as VAPID requires.
func normalizeContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if strings.HasPrefix(contact, "mailto:") {
		return contact
	}
	return "mailto:" + contact
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

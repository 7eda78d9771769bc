package boot

import (
	"context"
	"fmt"
	"path"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env           string `env:"ENV,default=dev"`
	Addr          string `env:"ADDR,default=:8080"`
	MetricsAddr   string `env:"METRICS_ADDR,default=:8081"`
	DataDirectory string `env:"DATA_DIR,default=./data"`
	BaseURL       string `env:"BASE_URL,default=http://localhost:8080"`

	SessionSecret string `env:"SESSION_SECRET,default=super-secret-key-for-development"`
	TokenSecret   string `env:"TOKEN_SECRET,default=super-secret-key-for-development"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// Optional roster of trusted-group usernames, one per line. Watched for
	// changes while the server is running.
	TrustedMembersFile string `env:"TRUSTED_MEMBERS_FILE"`
}

func Load() (Config, error) {
	config := Config{}
	if err := envconfig.Process(context.Background(), &config); err != nil {
		return Config{}, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) DatabasePath() string {
	return path.Join(c.DataDirectory, "pastalink.db")
}

func (c *Config) PasteDataDirectory() string {
	return path.Join(c.DataDirectory, "paste_data")
}

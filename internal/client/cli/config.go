package cli

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/toolrent/rental-system/internal/client/session"
)

// Config is the client's environment configuration.
type Config struct {
	APIURL    string `env:"TOOLRENT_API_URL, default=http://localhost:8080"`
	TokenFile string `env:"TOOLRENT_TOKEN_FILE"`
}

// LoadConfig reads the client configuration through lookuper.
func LoadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}
	if cfg.TokenFile == "" {
		path, err := session.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		cfg.TokenFile = path
	}
	return &cfg, nil
}

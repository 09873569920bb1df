package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// PlatformConfig seeds the platform singleton the first time the store is
// initialized. Later changes go through the administrator operations only.
type PlatformConfig struct {
	Administrator  string `mapstructure:"administrator"`
	FeeBasisPoints uint64 `mapstructure:"feeBasisPoints"`
}

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		Administrator:  "0x0000000000000000000000000000000000000000",
		FeeBasisPoints: 250,
	}
}

// LoadPlatformConfig reads platform.yml from the standard locations, or from
// searchPaths when given. Missing files fall back to defaults; ONCLICK_* env
// vars override file values.
func LoadPlatformConfig(searchPaths ...string) (PlatformConfig, error) {
	v := viper.New()

	v.SetConfigName("platform")
	v.SetConfigType("yml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"/var/lib/onclick/config", "/etc/onclick", "."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("ONCLICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPlatformConfig()
	v.SetDefault("platform.administrator", defaults.Administrator)
	v.SetDefault("platform.feeBasisPoints", defaults.FeeBasisPoints)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return PlatformConfig{}, err
		}
	}

	cfg := PlatformConfig{
		Administrator:  strings.TrimSpace(v.GetString("platform.administrator")),
		FeeBasisPoints: v.GetUint64("platform.feeBasisPoints"),
	}
	if err := validatePlatformConfig(cfg); err != nil {
		return PlatformConfig{}, err
	}
	return cfg, nil
}

func validatePlatformConfig(cfg PlatformConfig) error {
	if cfg.Administrator == "" {
		return errors.New("platform.administrator cannot be empty")
	}
	if cfg.FeeBasisPoints > 10000 {
		return errors.New("platform.feeBasisPoints cannot exceed 10000")
	}
	return nil
}

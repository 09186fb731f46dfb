// This file defines the configuration structure for the application.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SizeConstraint describes one target crop size in the static size
// configuration. Zero values mean "unconstrained".
type SizeConstraint struct {
	Width       int     `mapstructure:"width" json:"w,omitempty" yaml:"width"`
	Height      int     `mapstructure:"height" json:"h,omitempty" yaml:"height"`
	MinWidth    int     `mapstructure:"min_width" json:"min_w,omitempty" yaml:"min_width"`
	MinHeight   int     `mapstructure:"min_height" json:"min_h,omitempty" yaml:"min_height"`
	AspectRatio float64 `mapstructure:"aspect_ratio" json:"aspect_ratio,omitempty" yaml:"aspect_ratio"`
}

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port      int    `mapstructure:"port"`
	URLPrefix string `mapstructure:"url_prefix"`
	StaticURL string `mapstructure:"static_url"`
	Database  struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Media struct {
		Root string `mapstructure:"root"`
		URL  string `mapstructure:"url"`
	} `mapstructure:"media"`
	Upload struct {
		MaxSize int64 `mapstructure:"max_size"`
	} `mapstructure:"upload"`
	Cleanup struct {
		Interval int `mapstructure:"interval"` // minutes, 0 disables the job
		MaxAge   int `mapstructure:"max_age"`  // hours
	} `mapstructure:"cleanup"`
	Templates struct {
		OverrideDir string `mapstructure:"override_dir"`
	} `mapstructure:"templates"`
	Sizes struct {
		Default map[string]SizeConstraint `mapstructure:"default"`
	} `mapstructure:"sizes"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	// CROPDUSTER_DATABASE_PATH overrides `database.path`, and so on.
	v.SetEnvPrefix("CROPDUSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("url_prefix", "/cropduster")
	v.SetDefault("static_url", "/cropduster/_static/")
	v.SetDefault("database.path", "./cropduster.db")
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.url", "/media/")
	v.SetDefault("upload.max_size", 10<<20)
	v.SetDefault("cleanup.interval", 60)
	v.SetDefault("cleanup.max_age", 24)
	v.SetDefault("templates.override_dir", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

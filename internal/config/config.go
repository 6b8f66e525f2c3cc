// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	API        API        `yaml:"api"`
	TokenStore TokenStore `yaml:"tokenStore"`
	Session    Session    `yaml:"session"`
	Database   Database   `yaml:"database"`
	ValKey     ValKey     `yaml:"valkey"`
	Catalog    Catalog    `yaml:"catalog"`
	Dashboard  Dashboard  `yaml:"dashboard"`
}

type API struct {
	BaseURL string        `yaml:"baseURL" default:"http://127.0.0.1:8000/api"`
	Timeout time.Duration `yaml:"timeout" default:"30s"`
	// RateLimit caps outgoing requests per second. Zero disables the limiter.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst" default:"1"`
}

type TokenStoreType string

const (
	TokenStoreFile     TokenStoreType = "file"
	TokenStoreValKey   TokenStoreType = "valkey"
	TokenStorePostgres TokenStoreType = "postgres"
	TokenStoreMemory   TokenStoreType = "memory"
)

type TokenStore struct {
	Type TokenStoreType `yaml:"type" default:"file"`
	// Path of the credentials file for the file store.
	Path string `yaml:"path" default:"$HOME/.inventario/credentials.yaml"`
	// Profile separates the tokens of several accounts in shared stores.
	Profile string `yaml:"profile" default:"default"`
}

type Session struct {
	RevokeOnLogout bool `yaml:"revokeOnLogout"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	SSLMode  string              `yaml:"sslMode"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"inventario"`
}

type Catalog struct {
	CacheTTL time.Duration `yaml:"cacheTTL" default:"5m"`
}

type Dashboard struct {
	RefreshInterval time.Duration `yaml:"refreshInterval" default:"1m"`
}

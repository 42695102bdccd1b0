// Package config loads the TOML configuration of the gsmd tools.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	MMSCURL        string
	Proxy          string
	PhoneNumber    string
	DeliveryReport bool
	Timeout        time.Duration

	RedisAddr string
	RedisDB   int

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Timeout:   60 * time.Second,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

type fileConfig struct {
	MMSCURL        string `toml:"mmsc_url"`
	Proxy          string `toml:"proxy"`
	PhoneNumber    string `toml:"phone_number"`
	DeliveryReport bool   `toml:"delivery_report"`
	Timeout        string `toml:"timeout"`
	RedisAddr      string `toml:"redis_addr"`
	RedisDB        int    `toml:"redis_db"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return apply(meta, raw)
}

// Parse is Load for an in-memory document.
func Parse(doc string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(doc, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return apply(meta, raw)
}

func apply(meta toml.MetaData, raw fileConfig) (Config, error) {
	cfg := Default()

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q: %w", undecoded[0].String(), ErrInvalid)
	}

	if meta.IsDefined("mmsc_url") {
		cfg.MMSCURL = strings.TrimSpace(raw.MMSCURL)
	}
	if meta.IsDefined("proxy") {
		cfg.Proxy = strings.TrimSpace(raw.Proxy)
	}
	if meta.IsDefined("phone_number") {
		cfg.PhoneNumber = strings.TrimSpace(raw.PhoneNumber)
	}
	if meta.IsDefined("delivery_report") {
		cfg.DeliveryReport = raw.DeliveryReport
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("redis_addr") {
		cfg.RedisAddr = strings.TrimSpace(raw.RedisAddr)
	}
	if meta.IsDefined("redis_db") {
		cfg.RedisDB = raw.RedisDB
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MMSCURL != "" {
		if err := checkURL(c.MMSCURL); err != nil {
			return fmt.Errorf("mmsc_url: %w", err)
		}
	}
	if c.Proxy != "" {
		if err := checkURL(c.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout %s: %w", c.Timeout, ErrInvalid)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("redis_db %d: %w", c.RedisDB, ErrInvalid)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("log_format %q: %w", c.LogFormat, ErrInvalid)
	}
	return nil
}

func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http url: %w", s, ErrInvalid)
	}
	return nil
}

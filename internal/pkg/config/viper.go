package config

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ErrFormatRequired is returned by Parse when no format is given.
var ErrFormatRequired = errors.New("config: format is required")

// Viper implements Config. Every key can be overridden from the environment:
// "mail.smtp.host" reads MAIL_SMTP_HOST.
type Viper struct {
	v *viper.Viper
}

// Option adjusts the viper instance before anything is read.
type Option func(v *viper.Viper) error

// WithEnvAlias adds environment variables that also set key, checked in order.
func WithEnvAlias(key string, envs ...string) Option {
	return func(v *viper.Viper) error {
		return v.BindEnv(append([]string{key}, envs...)...)
	}
}

func WithDefault(key string, value any) Option {
	return func(v *viper.Viper) error {
		v.SetDefault(key, value)
		return nil
	}
}

// Load reads file and keeps watching it. Reloads only touch keys that are
// read per request, such as the maintenance switch.
func Load(file string, opts ...Option) (*Viper, error) {
	v, err := build(opts)
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config reloaded", "file", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// Parse reads data in the given format ("yaml", "json", ...).
func Parse(format string, data []byte, opts ...Option) (*Viper, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		return nil, ErrFormatRequired
	}

	v, err := build(opts)
	if err != nil {
		return nil, err
	}

	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func build(opts []Option) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.EnvKeyReplacer(strings.NewReplacer(".", "_")))
	v.AutomaticEnv()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (c *Viper) GetBool(key string) bool       { return c.v.GetBool(key) }
func (c *Viper) GetInt(key string) int         { return c.v.GetInt(key) }
func (c *Viper) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }
func (c *Viper) GetString(key string) string   { return c.v.GetString(key) }

func (c *Viper) GetSecond(key string) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * time.Second
}

// GetArray trims every element and drops blank ones. An env override such as
// INSTRUMENT_LOG_MASK_FIELDS="phone,email" arrives as a single string.
func (c *Viper) GetArray(key string) []string {
	raw := c.v.Get(key)
	if raw == nil {
		return nil
	}

	var items []string
	if s, ok := raw.(string); ok {
		items = strings.Split(s, ",")
	} else {
		items = c.v.GetStringSlice(key)
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package hookq

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds configuration for the hookq engine.
type Config struct {
	// Interval is the poll period of the batch scheduler.
	Interval time.Duration `mapstructure:"interval"`

	// BatchSize is the maximum number of hooks claimed per tick.
	// Zero means unbounded.
	BatchSize int `mapstructure:"batchSize"`

	// Concurrency is the maximum number of hooks executed in parallel
	// within one batch.
	Concurrency int `mapstructure:"concurrency"`

	// MaxRetries bounds the number of execution cycles per hook.
	MaxRetries int `mapstructure:"maxRetries"`

	// Timeout is the per-action execution deadline. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`

	// Log enables verbose lifecycle logging via the observability
	// extension.
	Log bool `mapstructure:"log"`

	// ShutdownTimeout is the maximum time Stop waits for in-flight
	// hooks to drain.
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`

	// Store configures the persistence backend.
	Store StoreConfig `mapstructure:"store"`

	// Actions maps a hook name to its ordered action list.
	Actions map[string][]ActionConfig `mapstructure:"actions"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	// Connection is the backend connection string (mongodb:// or redis://).
	Connection string `mapstructure:"connection"`

	// CollectionName is the collection (mongo) or key namespace (redis)
	// holding hook documents.
	CollectionName string `mapstructure:"collectionName"`
}

// ActionConfig declares one action within a hook's action list. In config
// files it is written either as a bare identifier string or as an object
// pairing the identifier with default payload fields.
type ActionConfig struct {
	// Action is the action identifier: a dotted method-table path, or a
	// call expression with literal arguments ("mailer.send('welcome')").
	Action string `mapstructure:"action"`

	// Defaults are payload fields merged under the hook's own data.
	// The hook data wins on key conflicts.
	Defaults map[string]any `mapstructure:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:        5 * time.Second,
		BatchSize:       0,
		Concurrency:     10,
		MaxRetries:      5,
		Timeout:         0,
		ShutdownTimeout: 30 * time.Second,
		Store: StoreConfig{
			CollectionName: "hooks",
		},
	}
}

// LoadConfig reads a config file (any format viper understands) and
// unmarshals it over DefaultConfig. Action lists accept both the bare
// string and the {action, defaults} object form.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	// Hook names contain dots ("user.created"); the default "." key
	// delimiter would split them into nested maps.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("hookq: read config %q: %w", path, err)
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		actionConfigHookFunc(),
	))); err != nil {
		return cfg, fmt.Errorf("hookq: unmarshal config %q: %w", path, err)
	}

	return cfg, nil
}

// actionConfigHookFunc lets a bare string decode into ActionConfig.
func actionConfigHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(ActionConfig{})

	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != target || from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)
		return ActionConfig{Action: s}, nil
	}
}

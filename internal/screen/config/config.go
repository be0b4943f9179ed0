package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// DBPath is the bolt database file holding the durable rule records.
	DBPath string `koanf:"db_path" validate:"required"`

	// CacheSize is the capacity of the evaluation decision cache.
	// Zero disables the cache.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// BloomFPRate is the target false-positive rate for the blocked-number
	// bloom filter.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"required,gt=0,lt=1"`

	// DirectoryPath is where the enforcement list is written for the
	// call-screening extension. Empty disables the file exporter.
	DirectoryPath string `koanf:"directory_path"`

	// StatusPath is an optional file the extension host uses to report its
	// status ("enabled", "disabled", "error"). Empty means always enabled.
	StatusPath string `koanf:"status_path"`

	// MaxEntries is the provider's maximum enforcement-list size. A sync
	// whose payload exceeds it fails whole; nothing is truncated.
	// Zero means unlimited.
	MaxEntries int `koanf:"max_entries" validate:"gte=0"`

	// ExitCodes are the international dialing exit codes the identifier
	// normalizer recognizes in addition to a leading plus sign.
	ExitCodes []string `koanf:"exit_codes" validate:"required,dive,digit_string"`
}

// DEFAULT_APP_CONFIG defines the default application configuration for the
// call-admission engine: rule database location, cache sizing, enforcement
// list destination, and normalizer exit codes.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:           "prod",
	LogLevel:      "info",
	DBPath:        "/var/lib/callgate/rules.db",
	CacheSize:     1000,
	BloomFPRate:   0.01,
	DirectoryPath: "/var/lib/callgate/directory.list",
	StatusPath:    "",
	MaxEntries:    250000,
	ExitCodes:     []string{"011", "00"},
}

// validDigitString validates that the field value is a non-empty string of
// ASCII digits. The builtin "numeric" tag admits signs and decimal points,
// which are not valid in an exit code.
func validDigitString(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// envLoader loads environment variables with the prefix "CALLGATE_". It
// transforms keys to lowercase, removes the prefix, and splits list values
// on spaces or commas. Mockable for tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "CALLGATE_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "CALLGATE_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf
// instance using the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "digit_string" validation.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("digit_string", validDigitString)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

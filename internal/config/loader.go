package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// parsers convert the text of an environment variable for each supported field type.
var parsers = map[reflect.Type]func(string) (any, error){
	reflect.TypeFor[string](): func(s string) (any, error) {
		return s, nil
	},
	reflect.TypeFor[int](): func(s string) (any, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %w", err)
		}
		return n, nil
	},
	reflect.TypeFor[time.Duration](): func(s string) (any, error) {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		return d, nil
	},
}

// Load reads the configuration from environment variables, applies the defaults and
// validates the result. All unset required variables and unparsable values are reported
// together.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := fromEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// fromEnv fills the fields tagged with env, descending into the config sections.
func fromEnv(section reflect.Value) error {
	var errs []error
	for i := range section.NumField() {
		field := section.Type().Field(i)
		target := section.Field(i)
		if field.Type.Kind() == reflect.Struct {
			errs = append(errs, fromEnv(target))
			continue
		}
		name, ok := field.Tag.Lookup("env")
		if !ok {
			continue
		}
		text, set := os.LookupEnv(name)
		if !set || text == "" {
			if field.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", name))
				continue
			}
			text = field.Tag.Get("default")
		}
		if text == "" {
			continue
		}
		parse, ok := parsers[field.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unsupported type %s", name, field.Type))
			continue
		}
		value, err := parse(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, text, err))
			continue
		}
		target.Set(reflect.ValueOf(value))
	}
	return errors.Join(errs...)
}

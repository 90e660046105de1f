package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type envLookup func(key string) (string, bool)

// applyEnv overrides every field tagged env:"KEY" whose variable is set.
// Nested sections are walked recursively.
func applyEnv(cfg *Config, lookup envLookup) error {
	return applyEnvTo(reflect.ValueOf(cfg).Elem(), lookup)
}

func applyEnvTo(section reflect.Value, lookup envLookup) error {
	t := section.Type()
	for i := 0; i < t.NumField(); i++ {
		field := section.Field(i)
		if field.Kind() == reflect.Struct {
			if err := applyEnvTo(field, lookup); err != nil {
				return err
			}
			continue
		}

		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if err := decodeEnv(field, raw); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func decodeEnv(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// splitList reads a comma separated list, dropping blank entries
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

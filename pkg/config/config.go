// Package config loads configuration structs from environment variables with
// an optional YAML file overlay. Fields are driven by struct tags:
//
//	Port int `env:"PORT" yaml:"port" default:"8080"`
//	Key  string `env:"API_KEY" yaml:"api_key" required:"true"`
//
// Defaults are applied first, then YAML values, then environment variables.
// Later layers win, and an explicit zero value (e.g. `false` in the file) is
// kept rather than re-defaulted.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Validator allows config structs to implement custom validation logic.
// If a config struct implements this interface, validation is called
// automatically after loading.
type Validator interface {
	Validate() error
}

// GetConfigFromEnvVars loads configuration from environment variables only,
// applying defaults and checking required fields.
func GetConfigFromEnvVars[T any](dest *T) error {
	return load(dest, nil)
}

// GetConfig loads configuration from a YAML file layered between defaults and
// environment variables. An empty filepath skips the file entirely. When
// allowFileErrors is true, unreadable or unparsable files fall back to
// environment variables only.
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, new(T)); err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return load(dest, data)
}

// load layers defaults, the optional YAML document and environment variables
// onto dest, in that order, then checks required fields and validates.
func load[T any](dest *T, yamlData []byte) error {
	val := reflect.ValueOf(dest).Elem()
	typeOfT := val.Type()

	err := func() error {
		if err := applyDefaults(val, typeOfT); err != nil {
			return err
		}
		if yamlData != nil {
			if err := yaml.Unmarshal(yamlData, dest); err != nil {
				return fmt.Errorf("failed to unmarshal YAML: %w", err)
			}
		}
		if err := applyEnvVars(val, typeOfT); err != nil {
			return err
		}
		return checkRequired(val, typeOfT)
	}()
	if err != nil {
		// reset to zero value so callers never see a half-loaded config
		*dest = reflect.New(reflect.TypeOf(dest).Elem()).Elem().Interface().(T)
		return err
	}

	if validator, ok := any(*dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return nil
}

// applyDefaults walks the struct recursively and fills zero-valued fields from
// `default` tags. It runs before the YAML and env layers, so any value those
// layers set sticks, including explicit zero values.
func applyDefaults(val reflect.Value, typeOfT reflect.Type) error {
	var result error

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyDefaults(field, fieldType.Type); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" || !field.IsZero() {
			continue
		}
		if err := setField(field, defaultTag); err != nil {
			result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
		}
	}
	return result
}

// applyEnvVars walks the struct recursively and assigns values from the
// environment, overriding anything set by earlier layers.
func applyEnvVars(val reflect.Value, typeOfT reflect.Type) error {
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := applyEnvVars(field, fieldType.Type); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal := os.Getenv(tag)
		if envVal == "" {
			continue
		}

		if err := setField(field, envVal); err != nil {
			return fmt.Errorf("env %s: %w", tag, err)
		}
	}
	return nil
}

// checkRequired accumulates an error for every `required` field still unset
// after all layers have been applied. A default tag neutralizes a required tag.
func checkRequired(val reflect.Value, typeOfT reflect.Type) error {
	var result error

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := checkRequired(field, fieldType.Type); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		requiredTag := strings.ToLower(fieldType.Tag.Get("required"))
		required := (requiredTag == "true" || requiredTag == "1") && fieldType.Tag.Get("default") == ""

		if required && field.IsZero() {
			result = multierror.Append(result, fmt.Errorf(
				"required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
		}
	}
	return result
}

// setField converts a string value to the field's type and assigns it.
func setField(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %q to duration: %v", raw, err)
		}
		field.SetInt(int64(duration))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64:
		intVal, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %q to int: %v", raw, err)
		}
		field.SetInt(intVal)
	case reflect.Float64, reflect.Float32:
		bits := 64
		if field.Kind() == reflect.Float32 {
			bits = 32
		}
		floatVal, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return fmt.Errorf("failed to convert %q to float: %v", raw, err)
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %q to bool: %v", raw, err)
		}
		field.SetBool(boolVal)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		values := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, v := range values {
			slice.Index(i).SetString(strings.TrimSpace(v))
		}
		field.Set(slice)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

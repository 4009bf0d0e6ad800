package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "BOGUS"

// LoadEnv overlays environment variables onto cfg. Names are derived from
// yaml tags, e.g. server.port -> BOGUS_SERVER_PORT.
func LoadEnv(cfg *Config) error {
	return loadEnvStruct(reflect.ValueOf(cfg).Elem(), EnvPrefix)
}

// loadEnvStruct recursively loads environment variables into a struct
func loadEnvStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		envKey, ok := envKeyFor(t.Field(i), prefix)
		if !ok {
			continue
		}

		switch field.Kind() {
		case reflect.Struct:
			if err := loadEnvStruct(field, envKey); err != nil {
				return err
			}

		case reflect.Ptr:
			elem := field.Type().Elem()
			if elem.Kind() == reflect.Struct {
				if field.IsNil() {
					if !hasEnvVarsWithPrefix(envKey) {
						continue
					}
					field.Set(reflect.New(elem))
				}
				if err := loadEnvStruct(field.Elem(), envKey); err != nil {
					return err
				}
				continue
			}

			// Pointer to scalar, e.g. *bool for tri-state flags
			val, ok := os.LookupEnv(envKey)
			if !ok || val == "" {
				continue
			}
			ptr := reflect.New(elem)
			if err := setScalar(ptr.Elem(), envKey, val); err != nil {
				return err
			}
			field.Set(ptr)

		case reflect.Map:
			// Maps are not expressible as a single env var
			continue

		default:
			if val := os.Getenv(envKey); val != "" {
				if err := setScalar(field, envKey, val); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func setScalar(field reflect.Value, envKey, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int, reflect.Int64:
		intVal, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int value for %s: %v", envKey, err)
		}
		field.SetInt(intVal)

	case reflect.Float64:
		floatVal, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", envKey, err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool value for %s: %v", envKey, err)
		}
		field.SetBool(boolVal)

	case reflect.Slice:
		// Only string slices, comma-separated
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
			for i, part := range parts {
				slice.Index(i).SetString(strings.TrimSpace(part))
			}
			field.Set(slice)
		}
	}
	return nil
}

func envKeyFor(f reflect.StructField, prefix string) (string, bool) {
	yamlTag := f.Tag.Get("yaml")
	if yamlTag == "" || yamlTag == "-" {
		return "", false
	}
	name := strings.Split(yamlTag, ",")[0]
	return fmt.Sprintf("%s_%s", prefix, strings.ToUpper(name)), true
}

// hasEnvVarsWithPrefix checks if any environment variables exist with the given prefix
func hasEnvVarsWithPrefix(prefix string) bool {
	prefix = prefix + "_"
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			return true
		}
	}
	return false
}

// EnvExample generates example environment variables for the configuration
func EnvExample(cfg *Config) []string {
	var examples []string
	generateEnvExamples(reflect.TypeOf(cfg).Elem(), EnvPrefix, &examples)
	return examples
}

func generateEnvExamples(t reflect.Type, prefix string, examples *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envKey, ok := envKeyFor(field, prefix)
		if !ok {
			continue
		}

		kind := field.Type.Kind()
		if kind == reflect.Ptr {
			if field.Type.Elem().Kind() == reflect.Struct {
				generateEnvExamples(field.Type.Elem(), envKey, examples)
				continue
			}
			kind = field.Type.Elem().Kind()
		}

		switch kind {
		case reflect.String:
			*examples = append(*examples, fmt.Sprintf("%s=value", envKey))
		case reflect.Int, reflect.Int64:
			*examples = append(*examples, fmt.Sprintf("%s=123", envKey))
		case reflect.Float64:
			*examples = append(*examples, fmt.Sprintf("%s=1.5", envKey))
		case reflect.Bool:
			*examples = append(*examples, fmt.Sprintf("%s=true", envKey))
		case reflect.Struct:
			generateEnvExamples(field.Type, envKey, examples)
		}
	}
}

package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// ApplyOverrides sets fields from dotted `key=value` pairs, eg. `master.cpu=1024`. Values are weakly typed
// so that command line strings decode into numeric fields.
func (a *Application) ApplyOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}
	nested := make(map[string]any)
	for key, value := range overrides {
		parts := strings.Split(key, ".")
		current := nested
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           a,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(nested), "invalid override")
}

// ParseOverrides splits `key=value` arguments.
func ParseOverrides(args []string) (map[string]string, error) {
	overrides := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("override %q must be of the form key=value", arg)
		}
		overrides[k] = v
	}
	return overrides, nil
}

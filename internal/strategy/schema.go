package strategy

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// describeParams lists the parameters of a config struct in declaration order.
// Defaults are taken from the defaults value rather than the schema tags.
func describeParams[T any](defaults T) ([]StrategyParam, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(defaults)

	raw, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	params := []StrategyParam{}
	if schema.Properties == nil {
		return params, nil
	}

	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		property := pair.Value

		options := make([]string, 0, len(property.Enum))
		for _, option := range property.Enum {
			options = append(options, fmt.Sprint(option))
		}

		params = append(params, StrategyParam{
			Name:        pair.Key,
			Type:        property.Type,
			Description: property.Description,
			Default:     values[pair.Key],
			Options:     options,
		})
	}

	return params, nil
}

package strategy

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// report parameters by their yaml name
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// decodeParams applies params on top of defaults. Unknown keys and values of
// the wrong type are rejected.
func decodeParams[T any](component string, defaults T, params map[string]any) (T, error) {
	config := defaults
	if len(params) == 0 {
		return config, nil
	}

	raw, err := yaml.Marshal(params)
	if err != nil {
		return defaults, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "%s: failed to encode parameters", component)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return defaults, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "%s: invalid parameters", component)
	}

	return config, nil
}

// validateConfig runs the validate tags of config and converts the first
// violation into an InvalidParameterError.
func validateConfig(component string, config any) error {
	err := getValidator().Struct(config)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "%s: failed to validate parameters", component)
	}

	fieldErr := validationErrors[0]

	return errors.NewInvalidParameterError(component, fieldErr.Field(), describeConstraint(fieldErr), fieldErr.Value())
}

func describeConstraint(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fieldErr.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fieldErr.Param())
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("must satisfy %s=%s", fieldErr.Tag(), fieldErr.Param())
	}
}

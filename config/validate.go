package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report config keys rather than Go field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks field constraints and cross-leg rules
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Rig.Legs))
	for _, l := range cfg.Rig.Legs {
		if seen[l.Name] {
			return fmt.Errorf("invalid config: duplicate leg name %q", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

func describe(fe validator.FieldError) string {
	// Drop the root struct name: "Config.rig.legs[0].name" -> "rig.legs[0].name"
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s (got %v)", ns, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s must satisfy %s (got %v)", ns, fe.Tag(), fe.Value())
}

// Package config provides the environment plumbing and fatal-exit
// helpers shared by the commercial paper commands.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Validator lets a config struct check cross-field constraints once
// parsing is complete.
type Validator interface {
	Validate() error
}

// ParseEnv loads configuration from environment variables. Validation
// is separate so flag overrides can be applied in between.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate runs the target's Validate method when it implements
// Validator. Call it after all configuration sources are applied.
func Validate(target any) error {
	v, ok := target.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

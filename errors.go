package genview

import (
	"errors"
	"fmt"
)

// Sentinel errors for view dispatch.
var (
	ErrNotFound             = errors.New("genview: object not found")
	ErrImproperlyConfigured = errors.New("genview: improperly configured")
	ErrNotImplemented       = fmt.Errorf("%w: dispatch not implemented", ErrImproperlyConfigured)
	ErrDecryptFailed        = errors.New("genview: flash decryption failed")
	ErrSignatureInvalid     = errors.New("genview: flash signature verification failed")
	ErrInvalidFormat        = errors.New("genview: invalid flash format")
)

// ConfigError reports a missing piece of static view configuration.
//
// It is a programmer error: the request fails with a server error instead of
// falling back to a default.
type ConfigError struct {
	View  string
	Field string
}

func (e *ConfigError) Error() string {
	if e.View == "" {
		return fmt.Sprintf("genview: missing %s", e.Field)
	}
	return fmt.Sprintf("genview: view %q: missing %s", e.View, e.Field)
}

// Unwrap lets errors.Is match ErrImproperlyConfigured.
func (e *ConfigError) Unwrap() error {
	return ErrImproperlyConfigured
}

func missing(view, field string) error {
	return &ConfigError{View: view, Field: field}
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfigError checks if err is caused by missing view configuration,
// including an unimplemented dispatch.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrImproperlyConfigured)
}

// IsDecryptionError checks if err is a flash cookie decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

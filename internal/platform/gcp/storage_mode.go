package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

type StorageConfig struct {
	Mode         StorageMode `yaml:"mode"`
	EmulatorHost string      `yaml:"emulator_host"`
}

type StorageConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *StorageConfigError) Error() string {
	switch e.Field {
	case "mode":
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Value, StorageModeGCS, StorageModeEmulator)
	case "emulator_host":
		if e.Value == "" {
			return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", StorageModeEmulator)
		}
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected an absolute URL like http://fake-gcs:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *StorageConfigError) Unwrap() error { return e.Cause }

// Resolve normalizes the mode. An emulator host with no explicit mode selects
// the emulator.
func (c StorageConfig) Resolve() (StorageConfig, error) {
	c.EmulatorHost = strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
	c.Mode = StorageMode(strings.ToLower(strings.TrimSpace(string(c.Mode))))

	switch c.Mode {
	case "":
		c.Mode = StorageModeGCS
		if c.EmulatorHost != "" {
			c.Mode = StorageModeEmulator
		}
	case StorageModeGCS, StorageModeEmulator:
	default:
		return c, &StorageConfigError{Field: "mode", Value: string(c.Mode)}
	}

	if c.Mode != StorageModeEmulator {
		return c, nil
	}
	if c.EmulatorHost == "" {
		return c, &StorageConfigError{Field: "emulator_host"}
	}
	u, err := url.Parse(c.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return c, &StorageConfigError{Field: "emulator_host", Value: c.EmulatorHost, Cause: err}
	}
	return c, nil
}

func (c StorageConfig) clientOptions() []option.ClientOption {
	if c.Mode == StorageModeEmulator {
		return []option.ClientOption{
			option.WithEndpoint(c.EmulatorHost + "/storage/v1/"),
			option.WithoutAuthentication(),
		}
	}
	return append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
}

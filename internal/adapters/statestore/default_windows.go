//go:build windows

package statestore

import "github.com/felixgeelhaar/wslup/internal/domain/pipeline"

// Default returns the platform store: the registry on Windows.
func Default() (pipeline.Store, error) {
	return NewRegistryStore(), nil
}

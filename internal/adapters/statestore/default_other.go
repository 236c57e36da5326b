//go:build !windows

package statestore

import "github.com/felixgeelhaar/wslup/internal/domain/pipeline"

// Default returns the platform store: a YAML file under the user config dir
// on non-Windows hosts, which mainly serves development and tests.
func Default() (pipeline.Store, error) {
	path, err := DefaultFilePath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

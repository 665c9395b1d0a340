package assets

import (
	"fmt"
	"strings"
)

// maxAssetNameLength bounds asset names read from configuration.
const maxAssetNameLength = 64

// ValidateAssetName checks that name can be used as a file name stem: not
// empty, short, and free of separators and dots.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > maxAssetNameLength:
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAssetName, maxAssetNameLength)
	case strings.ContainsAny(name, "/\\.\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

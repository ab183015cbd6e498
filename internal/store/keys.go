package store

import (
	"fmt"
	"net/url"
	"strings"
)

// splitKey splits a composite session key back into its shoot ID and room
// type for drivers that store the parts in separate columns. Keys carry
// percent-escaped parts (domain.SessionKey), so the first "/" is always
// the separator.
func splitKey(key string) (shootID, roomType string, err error) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("malformed session key %q", key)
	}
	shootID, err = url.PathUnescape(parts[0])
	if err != nil {
		return "", "", fmt.Errorf("malformed session key %q: %w", key, err)
	}
	roomType, err = url.PathUnescape(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("malformed session key %q: %w", key, err)
	}
	return shootID, roomType, nil
}

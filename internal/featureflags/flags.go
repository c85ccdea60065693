// Package featureflags reads boolean feature toggles from the
// environment. The only flag currently consulted is UNIQUE_INDEX,
// which switches survey assignment to atomic slot reservation.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive).
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

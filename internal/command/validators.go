package command

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// oneOf rejects values outside allowed.
func oneOf(allowed []string) func(string) error {
	return func(v string) error {
		if slices.Contains(allowed, v) {
			return nil
		}
		var names []string
		for _, a := range allowed {
			if a != "" {
				names = append(names, a)
			}
		}
		return fmt.Errorf("%q is not one of %s", v, strings.Join(names, ", "))
	}
}

// atLeast rejects values below lowest.
func atLeast[T int | int64 | time.Duration](lowest T) func(T) error {
	return func(v T) error {
		if v < lowest {
			return fmt.Errorf("%v is below the minimum %v", v, lowest)
		}
		return nil
	}
}

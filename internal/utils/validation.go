package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Bounds on filter input no real dataset comes close to.
const (
	MaxTypeNameLength = 100
	MaxSelections     = 50
	MinYear           = 1900
	MaxYear           = 2200
)

// ValidateTypeName validates a timber type selection such as "Pine Sawtimber".
// Types are an open set and are only ever compared for equality, so any
// characters are allowed.
func ValidateTypeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("type cannot be empty")
	}

	if len(name) > MaxTypeNameLength {
		return fmt.Errorf("type too long (max %d characters)", MaxTypeNameLength)
	}

	return nil
}

// ValidateYear validates a year bound
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("year must be between %d and %d", MinYear, MaxYear)
	}
	return nil
}

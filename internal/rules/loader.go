package rules

import (
	"fmt"
	"os"
)

// LoadFile reads and parses a rules document from disk.
func LoadFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(string(data)), nil
}

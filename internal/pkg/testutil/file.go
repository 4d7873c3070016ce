package testutil

import (
	"fmt"
	"os"
)

// CreateTestFile writes content to fileName, readable by the owner only.
// Used for scanner reports fed to import commands.
func CreateTestFile(fileName string, content []byte) error {
	if err := os.WriteFile(fileName, content, 0o600); err != nil {
		return fmt.Errorf("failed to write fixture %s: %w", fileName, err)
	}
	return nil
}

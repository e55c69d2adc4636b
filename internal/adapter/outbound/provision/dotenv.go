package provision

import (
	"fmt"
	"os"
)

// PersistEnvFile writes the resolved database URL to a dotenv file so later
// runs can pick it up from the environment. Like the sidecar backup policy,
// the write happens at most once: an existing file is left untouched.
func PersistEnvFile(path, databaseURL string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	content := fmt.Sprintf("DATABASE_URL=%s\n", databaseURL)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

package wrappers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// outDir returns (and creates) the artifact directory for one org and day:
// <base>/generated/<org>/<yyyy-mm-dd>.
func outDir(base, org string, now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if org == "" {
		org = "unknown-org"
	}
	dir := filepath.Join(base, "generated", org, now.UTC().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	return dir, nil
}

// okResult is the envelope every wrapper returns on success; the
// orchestrator tracks pipeline artifacts by the output_file key.
func okResult(outputFile string, extra map[string]interface{}) string {
	result := map[string]interface{}{
		"status":      "ok",
		"output_file": outputFile,
	}
	for k, v := range extra {
		result[k] = v
	}
	payload, _ := json.Marshal(result)
	return string(payload)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, key string) bool {
	v, ok := args[key].(bool)
	return ok && v
}

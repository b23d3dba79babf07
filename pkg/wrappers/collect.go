package wrappers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/user/posture-adk/pkg/adk"
	"github.com/user/posture-adk/pkg/engine"
)

// CollectWrapper is the first pipeline stage: it stages a Salesforce org
// configuration snapshot for assessment. Live API collection is handled by
// the external sfdc-connect collector; this wrapper either acknowledges a
// dry run or validates and stages a pre-collected snapshot file.
type CollectWrapper struct {
	// Snapshot is an optional pre-collected sfdc-connect output file to
	// stage instead of calling the Salesforce API.
	Snapshot string
	// OutBase is the artifact root; outputs land under
	// OutBase/generated/<org>/<date>/.
	OutBase string
	Now     time.Time
}

func (c *CollectWrapper) Name() string {
	return adk.ToolCollect
}

func (c *CollectWrapper) Description() string {
	return "Collect security-relevant configuration from a Salesforce org (read-only). " +
		"Use scope='all' for a full assessment. Returns path to collector output JSON."
}

func (c *CollectWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"org": map[string]interface{}{
				"type":        "string",
				"description": "Org alias or instance URL",
			},
			"scope": map[string]interface{}{
				"type":        "string",
				"description": "Which configuration scope(s) to collect ('all' for a full assessment)",
			},
			"env": map[string]interface{}{
				"type":        "string",
				"description": "Environment label for evidence tagging (dev, test, prod)",
			},
			"dry_run": map[string]interface{}{
				"type":        "boolean",
				"description": "Print what would be collected without calling Salesforce API",
			},
		},
		"required": []string{"scope"},
	}
}

// Critical reports true: if collection silently fails the assessment would
// run against nothing and report a clean org.
func (c *CollectWrapper) Critical() bool {
	return true
}

func (c *CollectWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	org := stringArg(args, "org")
	scope := stringArg(args, "scope")
	if scope == "" {
		scope = "all"
	}

	dir, err := outDir(c.OutBase, org, c.Now)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(dir, "sfdc_raw.json")

	if boolArg(args, "dry_run") {
		adk.Infof("[sfdc-connect] dry-run: would collect scope=%s from org %q", scope, org)
		return okResult(outPath, map[string]interface{}{
			"dry_run": true,
			"note":    "dry-run: org config not collected; pass dry_run=true to oscal_assess_assess",
		}), nil
	}

	if c.Snapshot == "" {
		return "", fmt.Errorf("live collection requires a pre-collected snapshot (--snapshot) or dry_run=true")
	}

	// Validate before staging; a malformed snapshot must fail this stage.
	if _, err := engine.LoadCollectorOutput(c.Snapshot); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", c.Snapshot, err)
	}
	if err := copyFile(c.Snapshot, outPath); err != nil {
		return "", err
	}
	return okResult(outPath, nil), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

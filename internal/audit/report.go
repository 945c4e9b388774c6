package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const summaryFileName = "_summary_audit.json"

// writeFileReport writes one file's audit result as <name>_audit.json in
// outputDir, keeping the source extension so a.py and a.js stay apart.
func writeFileReport(outputDir string, result *FileResult) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	name := filepath.Base(result.Path) + "_audit.json"
	return writeJSON(filepath.Join(outputDir, name), result)
}

// writeSummary writes the directory-wide summary report.
func writeSummary(outputDir string, summary *Summary) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outputDir, summaryFileName), summary)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

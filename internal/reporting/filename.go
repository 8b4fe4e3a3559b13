package reporting

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ExportFilename derives an output name from a base name by stripping
// its extension and appending the current local time plus the target
// extension: scan.xml + "csv" -> scan_20250114_093052.csv. Two calls
// within the same second collide; callers that care pick distinct base
// names.
func ExportFilename(baseName, ext string) string {
	return exportFilenameAt(baseName, ext, time.Now())
}

func exportFilenameAt(baseName, ext string, t time.Time) string {
	stem := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return fmt.Sprintf("%s_%s.%s", stem, t.Format("20060102_150405"), ext)
}

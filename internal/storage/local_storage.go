package storage

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

const runFileName = "result.json"

// RunStore archives parse runs on local disk, one directory per run
// holding a single JSON result document, optionally gzip-compressed.
// The process is single-threaded end to end, so the store carries no
// locking; retention is enforced only when Cleanup is called.
type RunStore struct {
	baseDir     string
	logger      *utils.Logger
	compression bool
	retention   time.Duration
}

func NewRunStore(baseDir string, compression bool, retention time.Duration, logger *utils.Logger) (*RunStore, error) {
	if logger == nil {
		logger = utils.DefaultLogger()
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run store directory: %w", err)
	}

	return &RunStore{
		baseDir:     baseDir,
		logger:      logger,
		compression: compression,
		retention:   retention,
	}, nil
}

func (rs *RunStore) SaveRun(result *models.ParseResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("cannot save run without an id")
	}

	runDir := filepath.Join(rs.baseDir, result.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	finalPath := filepath.Join(runDir, runFileName)

	tmpFile, err := os.CreateTemp(runDir, ".result_*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	enc := json.NewEncoder(tmpFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("encode run result: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("atomic rename: %w", err)
	}

	logPath := finalPath
	if rs.compression {
		if err := rs.compressFile(finalPath); err != nil {
			rs.logger.Warnf("failed to compress run result: %v", err)
		} else {
			_ = os.Remove(finalPath)
			logPath = finalPath + ".gz"
		}
	}

	rs.logger.Infof("run %s saved to %s", result.RunID, logPath)
	return nil
}

func (rs *RunStore) LoadRun(runID string) (*models.ParseResult, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is empty")
	}

	runDir := filepath.Join(rs.baseDir, runID)
	plain := filepath.Join(runDir, runFileName)
	compressed := plain + ".gz"

	switch {
	case utils.FileExists(plain):
		return readRunFile(plain)
	case utils.FileExists(compressed):
		tmp, err := rs.decompressFile(compressed)
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		defer os.Remove(tmp)
		return readRunFile(tmp)
	default:
		return nil, fmt.Errorf("run %s not found", runID)
	}
}

// ListRuns reads every archived run, skipping (with a warning) any
// that no longer parse. Results come back ordered by start time.
func (rs *RunStore) ListRuns() ([]*models.ParseResult, error) {
	entries, err := os.ReadDir(rs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read run store directory: %w", err)
	}

	runs := make([]*models.ParseResult, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := rs.LoadRun(entry.Name())
		if err != nil {
			rs.logger.Warnf("failed to load run %s: %v", entry.Name(), err)
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartTime.Before(runs[j].StartTime) })
	return runs, nil
}

func (rs *RunStore) DeleteRun(runID string) error {
	if runID == "" || strings.Contains(runID, string(os.PathSeparator)) || runID == "." || runID == ".." {
		return fmt.Errorf("invalid run id %q", runID)
	}

	runDir := filepath.Join(rs.baseDir, runID)
	if !utils.FileExists(runDir) {
		return fmt.Errorf("run %s not found", runID)
	}
	if err := os.RemoveAll(runDir); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}

	rs.logger.Infof("run %s deleted", runID)
	return nil
}

// Cleanup removes runs whose result file is older than the retention
// period and returns how many were removed. A zero retention disables
// cleanup entirely.
func (rs *RunStore) Cleanup() (int, error) {
	if rs.retention <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(rs.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read run store directory: %w", err)
	}

	cutoff := time.Now().Add(-rs.retention)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runDir := filepath.Join(rs.baseDir, entry.Name())
		info, err := newestFileInfo(runDir)
		if err != nil || info == nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(runDir); err != nil {
				rs.logger.Warnf("failed to remove expired run %s: %v", entry.Name(), err)
				continue
			}
			rs.logger.Infof("removed expired run %s", entry.Name())
			removed++
		}
	}

	return removed, nil
}

func (rs *RunStore) Stats() (map[string]interface{}, error) {
	totalSize, err := directorySize(rs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("calculate store size: %w", err)
	}

	entries, err := os.ReadDir(rs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read run store directory: %w", err)
	}
	runCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			runCount++
		}
	}

	return map[string]interface{}{
		"path":                rs.baseDir,
		"runs":                runCount,
		"total_size_bytes":    totalSize,
		"total_size_human":    utils.HumanizeBytes(totalSize),
		"compression_enabled": rs.compression,
		"retention_period":    rs.retention.String(),
	}, nil
}

func readRunFile(path string) (*models.ParseResult, error) {
	var result models.ParseResult
	if err := utils.ReadFileJSON(path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func newestFileInfo(dir string) (os.FileInfo, error) {
	var newest os.FileInfo
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		if newest == nil || info.ModTime().After(newest.ModTime()) {
			newest = info
		}
		return nil
	})
	return newest, err
}

func directorySize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

func (rs *RunStore) compressFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open for compress: %w", err)
	}
	defer in.Close()

	outPath := path + ".gz"
	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create gzip temp: %w", err)
	}

	gzw, err := gzip.NewWriterLevel(out, gzip.DefaultCompression)
	if err != nil {
		out.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("gzip writer: %w", err)
	}

	_, copyErr := io.Copy(gzw, in)
	closeErr1 := gzw.Close()
	closeErr2 := out.Close()

	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("gzip copy: %w", copyErr)
	}
	if closeErr1 != nil || closeErr2 != nil {
		_ = os.Remove(tmpPath)
		if closeErr1 != nil {
			return fmt.Errorf("close gzip: %w", closeErr1)
		}
		return fmt.Errorf("close file: %w", closeErr2)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename gzip file: %w", err)
	}
	return nil
}

func (rs *RunStore) decompressFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open gzip: %w", err)
	}
	defer in.Close()

	gzr, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("gzip reader: %w", err)
	}
	defer gzr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".result_*.json")
	if err != nil {
		return "", fmt.Errorf("create temp for decompress: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, gzr); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("decompress copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("sync temp: %w", err)
	}

	return tmp.Name(), nil
}

package nmap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
)

var (
	ErrNotFound  = errors.New("input file not found")
	ErrMalformed = errors.New("malformed scan report")
)

// Load parses a scan report from disk and returns the document root.
// Failures come back wrapped around ErrNotFound or ErrMalformed so
// batch callers can decide how loudly to complain; Load itself never
// logs.
func Load(path string) (*Node, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}

	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Parse unmarshals a raw report body into the node tree.
func Parse(data []byte) (*Node, error) {
	root := &Node{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return root, nil
}

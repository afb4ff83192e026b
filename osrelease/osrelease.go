// Package osrelease reads os-release style files: one KEY=value entry per
// line, values optionally double-quoted, hash comments and blank lines
// ignored.
package osrelease

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads every entry from r into a map. Malformed lines (no '=') are
// skipped, matching how release files are consumed elsewhere on the system.
func Parse(r io.Reader) (map[string]string, error) {
	entries := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}
		entries[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadKey returns the value of key from the release file at path. A missing
// file or a missing key is an error; required provisioning metadata lives
// in these files and its absence is a configuration fault.
func ReadKey(path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading release metadata: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	value, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("%s: required key %s not present", path, key)
	}
	return value, nil
}

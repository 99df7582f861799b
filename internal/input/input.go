// Package input collects the URL list for a batch from files and arguments.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoURLs is returned when neither a file nor arguments yield a URL.
var ErrNoURLs = errors.New("no URLs provided")

// LoadFile reads one URL per line. Blank lines and lines starting with '#'
// are skipped.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file %q not found", path)
		}
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return urls, nil
}

// Collect gathers URLs from file (when non-empty) and then args. An
// argument may hold several whitespace-separated URLs. The result keeps
// first occurrences only.
func Collect(file string, args []string) ([]string, error) {
	var urls []string
	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	for _, a := range args {
		urls = append(urls, strings.Fields(a)...)
	}
	urls = Dedupe(urls)
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

// Dedupe removes repeated entries, preserving the order of first
// appearance.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

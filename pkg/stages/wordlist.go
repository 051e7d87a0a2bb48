// Package stages implements the Azure enumeration modules: subdomain brute
// force, public blob discovery, Key Vault secret harvesting, role
// assignment collection, and raw Graph queries. Every stage follows the
// same shape: resolve inputs, fan out independent units through pkg/pool,
// and return typed results plus a batch summary.
package stages

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadWordlist loads candidate names from a file, one per line. Blank
// lines and #-comments are skipped.
func ReadWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, strings.ToLower(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("wordlist %s is empty", path)
	}
	return words, nil
}

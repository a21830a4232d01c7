// Package wordlist loads user word lists for typing tests.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when a list holds no usable words.
var ErrEmpty = errors.New("word list is empty")

// LoadWords reads whitespace-separated words from path and keeps the
// first occurrence of every word that passes keep. Lines starting with
// '#' are comments. A nil keep accepts every word.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Read-only file; close errors carry nothing.
			_ = cerr
		}
	}()

	var words []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, word := range strings.Fields(line) {
			if _, dup := seen[word]; dup {
				continue
			}
			if keep != nil && !keep(word) {
				continue
			}
			seen[word] = struct{}{}
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmpty
	}
	return words, nil
}

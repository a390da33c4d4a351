package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDList is an allow-list of gene symbols or transcript IDs. An empty list
// allows everything.
type IDList map[string]bool

// Allows reports whether id passes the list.
func (l IDList) Allows(id string) bool {
	return len(l) == 0 || l[id]
}

// LoadIDList loads an allow-list file with one identifier per line.
// An empty path yields an empty list.
func LoadIDList(path string) (IDList, error) {
	if path == "" {
		return IDList{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open id list: %w", err)
	}
	defer f.Close()

	return parseIDList(f)
}

// parseIDList reads the first whitespace-separated token of each line,
// skipping blank lines and '#' comments.
func parseIDList(reader io.Reader) (IDList, error) {
	ids := make(IDList)
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		ids[fields[0]] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan id list: %w", err)
	}

	return ids, nil
}

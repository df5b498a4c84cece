package dragndrop

import (
	"net/url"
	"strings"
)

const fileScheme = "file://"

// ParseURIList splits text/uri-list data into paths. Each line loses its
// trailing line terminators; file:// entries lose the prefix and are
// percent-decoded. Empty lines and comment lines are skipped.
func ParseURIList(data string) []string {
	var paths []string
	for _, line := range strings.SplitAfter(data, "\n") {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, fileScheme); ok {
			line = rest
			if p, err := url.PathUnescape(rest); err == nil {
				line = p
			}
		}
		paths = append(paths, line)
	}
	return paths
}

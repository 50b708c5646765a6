// Package parser extracts frontmatter, titles, and wikilinks from Markdown content.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/chefknight/internal/apperr"
)

const delim = "---"

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Metadata map[string]any
	Body     string
	Title    string
	Links    []string
}

// Parse splits frontmatter from body and derives the title and wikilinks.
//
// The returned Result is always usable. When the frontmatter block is
// malformed the error wraps apperr.ErrParseWarning, Metadata is empty, and
// Body holds the full raw text.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	return &Result{
		Metadata: fm,
		Body:     body,
		Title:    deriveTitle(fm, body),
		Links:    extractLinks(body),
	}, err
}

// splitFrontmatter separates a YAML block delimited by --- lines from the
// Markdown body. The opening delimiter must be the very first bytes of the
// file: a BOM or leading whitespace means there is no frontmatter.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	raw := string(data)
	empty := map[string]any{}

	var rest []byte
	switch {
	case bytes.HasPrefix(data, []byte(delim+"\n")):
		rest = data[len(delim)+1:]
	case bytes.HasPrefix(data, []byte(delim+"\r\n")):
		rest = data[len(delim)+2:]
	default:
		return empty, raw, nil
	}

	// Find the closing delimiter line.
	blockEnd, bodyStart := -1, -1
	for off := 0; off <= len(rest); {
		nl := bytes.IndexByte(rest[off:], '\n')
		lineEnd := len(rest)
		next := len(rest)
		if nl >= 0 {
			lineEnd = off + nl
			next = lineEnd + 1
		}
		line := bytes.TrimSuffix(rest[off:lineEnd], []byte("\r"))
		if string(line) == delim {
			blockEnd, bodyStart = off, next
			break
		}
		if nl < 0 {
			break
		}
		off = next
	}
	if blockEnd < 0 {
		return empty, raw, fmt.Errorf("%w: missing closing %q line", apperr.ErrParseWarning, delim)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:blockEnd], &fm); err != nil {
		return empty, raw, fmt.Errorf("%w: %v", apperr.ErrParseWarning, err)
	}
	if fm == nil {
		fm = empty
	}
	fm = stringKeys(fm).(map[string]any)
	if _, err := json.Marshal(fm); err != nil {
		return empty, raw, fmt.Errorf("%w: frontmatter not representable as JSON: %v", apperr.ErrParseWarning, err)
	}

	body := strings.TrimLeft(string(rest[bodyStart:]), "\r\n")
	return fm, body, nil
}

// stringKeys rewrites nested YAML mappings with non-string keys, which
// decode as map[any]any, into map[string]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}

// extractLinks returns deduplicated wikilink targets, normalising aliases.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target, _, _ := strings.Cut(m[1], "|")
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

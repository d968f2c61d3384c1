// Package preferences reads and writes Eclipse style preference files, which are Java properties files
// with a version entry.
package preferences

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/magiconair/properties"
	"go.uber.org/multierr"
)

// VersionKey is the bookkeeping entry written at the top of every preference file.
const VersionKey = "eclipse.preferences.version"

const _version = "1"

// Preferences are the key/value pairs of a preference file, without the version entry.
type Preferences map[string]string

// Parse reads a preference file. It parses with best effort: entries that cannot be read are skipped and
// reported in the returned error alongside the entries that could be read.
// Files that are not valid UTF-8 are read as ISO-8859-1, the encoding of Java properties files.
func Parse(r io.Reader) (Preferences, error) {
	prefs := Preferences{}
	data, err := io.ReadAll(r)
	if err != nil {
		return prefs, err
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	if !utf8.Valid(data) {
		loader.Encoding = properties.ISO_8859_1
	}
	if p, err := loader.LoadBytes(data); err == nil {
		prefs.merge(p)
		return prefs, nil
	}

	var errs error
	for _, e := range splitEntries(data) {
		p, err := loader.LoadBytes(e.text)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", e.line, err))
			continue
		}
		prefs.merge(p)
	}
	return prefs, errs
}

func (prefs Preferences) merge(p *properties.Properties) {
	for k, v := range p.Map() {
		if k != VersionKey {
			prefs[k] = v
		}
	}
}

// Write writes prefs with sorted keys, preceded by the version entry.
// Characters outside ASCII in the basic multilingual plane are written as \uXXXX escapes.
func Write(w io.Writer, prefs Preferences) error {
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		if k != VersionKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	p := properties.NewProperties()
	p.DisableExpansion = true
	p.WriteSeparator = "="
	p.Set(VersionKey, _version)
	for _, k := range keys {
		p.Set(k, prefs[k])
	}

	var buf strings.Builder
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return err
	}
	_, err := io.WriteString(w, escapeUnicode(buf.String()))
	return err
}

func escapeUnicode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		// Supplementary characters stay UTF-8: a \u escape cannot hold them.
		if r > 0x7e && r <= 0xffff {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type entry struct {
	line int
	text []byte
}

// splitEntries splits data into its logical entries. A line ending with an odd number of
// backslashes continues on the next line; comment lines never do.
func splitEntries(data []byte) []entry {
	var (
		entries []entry
		current *entry
	)
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if current == nil {
			trimmed := bytes.TrimLeft(line, " \t\f")
			if len(trimmed) == 0 || trimmed[0] == '#' || trimmed[0] == '!' {
				continue
			}
			current = &entry{line: i + 1}
		} else {
			current.text = append(current.text, '\n')
		}
		current.text = append(current.text, line...)
		if !continues(line) {
			entries = append(entries, *current)
			current = nil
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}

func continues(line []byte) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

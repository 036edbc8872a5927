package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"codeberg.org/snonux/cardprep/internal/errors"
)

// Document is a JSON object of named groups. Top-level key order is kept
// so a rewrite only moves what changed.
type Document struct {
	keys   []string
	groups map[string]json.RawMessage
}

// Load reads and parses a catalog file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("catalog not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFile, "failed to read catalog %s", path)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a catalog from JSON. The top level must be an object.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "malformed catalog JSON")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Wrap(nil, errors.CodeParse, "catalog top level must be a JSON object")
	}

	doc := &Document{groups: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParse, "malformed catalog JSON")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Wrap(nil, errors.CodeParse, "malformed catalog JSON: expected key")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, errors.CodeParse, "malformed value for %q", key)
		}

		if _, seen := doc.groups[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.groups[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "malformed catalog JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(nil, errors.CodeParse, "trailing data after catalog object")
	}

	return doc, nil
}

// Keys returns the top-level keys in document order
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Group returns the raw JSON of a top-level key
func (d *Document) Group(name string) (json.RawMessage, bool) {
	raw, ok := d.groups[name]
	return raw, ok
}

// Words returns the words held by a group, for either entry shape
func (d *Document) Words(name string) ([]string, error) {
	entries, err := d.entries(name)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, e := range entries {
		if w, ok := entryWord(e); ok {
			words = append(words, w)
		}
	}
	return words, nil
}

// Add appends the words missing from the group and returns them. The group
// is created as an empty array when absent.
func (d *Document) Add(name string, words []string, shape Shape) ([]string, error) {
	entries, err := d.entries(name)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool)
	for _, e := range entries {
		if w, ok := shape.match(e); ok {
			present[w] = true
		}
	}

	var added []string
	for _, w := range words {
		if present[w] {
			continue
		}
		raw, err := shape.entry(w)
		if err != nil {
			return nil, err
		}
		entries = append(entries, raw)
		present[w] = true
		added = append(added, w)
	}

	if entries == nil {
		entries = []json.RawMessage{}
	}
	encoded, err := encode(entries)
	if err != nil {
		return nil, err
	}

	if _, ok := d.groups[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.groups[name] = encoded
	return added, nil
}

// entries decodes a group into its raw elements; a missing group is empty
func (d *Document) entries(name string) ([]json.RawMessage, error) {
	raw, ok := d.groups[name]
	if !ok {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Wrap(nil, errors.CodeParse, fmt.Sprintf("group %q is not an array", name))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, errors.Wrapf(err, errors.CodeParse, "group %q is not an array", name)
	}
	return entries, nil
}

// Marshal renders the document with two-space indentation. Non-ASCII text
// is written as-is.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := encode(key)
		if err != nil {
			return nil, err
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(d.groups[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format catalog: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Save writes the document to path
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.CodeFile, "failed to write catalog %s", path)
	}
	return nil
}

// encode marshals v without HTML escaping and without the trailing newline
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode catalog value: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

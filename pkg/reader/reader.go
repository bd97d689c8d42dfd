package reader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"findatex-hq/regcheck/pkg/validation"
)

// Format is the encoding of an input document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultMaxSize is the largest document accepted by default.
const DefaultMaxSize = 64 * 1024 * 1024

// ParseFormat maps a user-supplied name ("json", "yaml", "yml", "auto" or
// empty) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want json, yaml or auto)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// FormatFromContentType infers the format from an HTTP Content-Type.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Error reports a document that could not be turned into records.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReadFile reads the document at path. The format is inferred from the
// extension, falling back to content sniffing.
func ReadFile(path string) (validation.Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return validation.Subject{}, &Error{Source: path, Err: err}
	}
	defer f.Close()

	return Read(f, FormatFromPath(path), path)
}

// Read decodes a document from r. source names the document in errors.
func Read(r io.Reader, format Format, source string) (validation.Subject, error) {
	data, err := io.ReadAll(io.LimitReader(r, DefaultMaxSize+1))
	if err != nil {
		return validation.Subject{}, &Error{Source: source, Err: err}
	}
	if len(data) > DefaultMaxSize {
		return validation.Subject{}, &Error{Source: source, Err: fmt.Errorf("document exceeds %d bytes", DefaultMaxSize)}
	}
	return ReadBytes(data, format, source)
}

// ReadBytes decodes a document held in memory. A mapping yields a single
// record; a sequence of mappings yields a batch. Numbers decode to float64
// whichever the format, so both encodings produce identical records.
func ReadBytes(data []byte, format Format, source string) (validation.Subject, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	var doc any
	var err error
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return validation.Subject{}, &Error{Source: source, Err: err}
	}

	subject, err := toSubject(normalize(doc))
	if err != nil {
		return validation.Subject{}, &Error{Source: source, Err: err}
	}
	return subject, nil
}

// sniff treats documents opening with '{' or '[' as JSON.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: unexpected data after top-level value")
	}
	return doc, nil
}

// decodeYAML walks the node tree rather than unmarshalling into any so that
// timestamps keep their source text, as they would in JSON.
func decodeYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, errors.New("empty document")
	}
	doc, err := nodeValue(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return nil, errors.New("empty document")
	}
	return doc, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return mappingValue(n)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

// mappingValue builds a map from a mapping node. Merge keys ("<<") fill in
// keys the mapping does not set itself; a key set twice is an error.
func mappingValue(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merged []map[string]any
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			v, err := nodeValue(valNode)
			if err != nil {
				return nil, err
			}
			switch m := v.(type) {
			case map[string]any:
				merged = append(merged, m)
			case []any:
				for _, item := range m {
					if mm, ok := item.(map[string]any); ok {
						merged = append(merged, mm)
					}
				}
			default:
				return nil, fmt.Errorf("line %d: merge value is not a mapping", valNode.Line)
			}
			continue
		}

		key := keyNode.Value
		if keyNode.Kind != yaml.ScalarNode {
			k, err := nodeValue(keyNode)
			if err != nil {
				return nil, err
			}
			key = fmt.Sprint(k)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("line %d: mapping key %q already defined", keyNode.Line, key)
		}
		v, err := nodeValue(valNode)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	for _, m := range merged {
		for k, v := range m {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func toSubject(doc any) (validation.Subject, error) {
	switch v := doc.(type) {
	case map[string]any:
		return validation.Single(v), nil
	case []any:
		records := make([]validation.Record, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return validation.Subject{}, fmt.Errorf("record %d is a %s, want a mapping", i, shape(item))
			}
			records[i] = m
		}
		return validation.Batch(records), nil
	default:
		return validation.Subject{}, fmt.Errorf("document is a %s, want a mapping or a list of mappings", shape(doc))
	}
}

// normalize converts decoder-specific shapes to the common record shape:
// integers become float64 and non-string map keys become strings.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}

func shape(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

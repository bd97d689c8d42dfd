package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"findatex-hq/regcheck/pkg/schema/ast"
	schemaErrors "findatex-hq/regcheck/pkg/schema/errors"
)

// DefaultMaxFileSize is the largest schema file accepted by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Parser parses schema definition files into located ASTs.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Parse parses the schema definition file at path.
// It returns an error if the file cannot be read, has invalid YAML syntax,
// or is not shaped like a schema definition.
func (p *Parser) Parse(path string) (*ast.Definition, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	yd, err := parseYAMLFile(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: path, Line: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	def, err := newBuilder(path).buildDefinition(yd)
	if err != nil {
		if errList, ok := err.(*schemaErrors.ErrorList); ok {
			for i, e := range errList.Errors {
				errList.Errors[i] = schemaErrors.AddContextToError(e)
			}
		}
		return nil, err
	}

	return def, nil
}

// ParseBytes parses a schema definition held in memory. sourcePath is used
// for error locations only.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Definition, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	yd, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	return newBuilder(sourcePath).buildDefinition(yd)
}

// ParseDir parses every *.yaml, *.yml and *.json file directly under dir,
// in lexical order. Parsing stops at the first failing file.
func (p *Parser) ParseDir(dir string) ([]*ast.Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read directory: %v", err),
			Location: ast.Location{File: dir},
		}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsSchemaFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	defs := make([]*ast.Definition, 0, len(paths))
	for _, path := range paths {
		def, err := p.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// IsSchemaFile reports whether name has a schema definition extension.
func IsSchemaFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

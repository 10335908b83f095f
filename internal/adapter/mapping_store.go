package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	m "deobf.dev/pkg/deobf/internal/model"
)

// MappingFormat selects the encoding of a persisted rename map.
type MappingFormat string

const (
	// MappingYAML encodes the map as YAML.
	MappingYAML MappingFormat = "yaml"
	// MappingJSON encodes the map as indented JSON.
	MappingJSON MappingFormat = "json"
)

// CurrentMappingVersion is written into every saved mapping document.
const CurrentMappingVersion = 1

// ParseMappingFormat maps a user-supplied format name to a MappingFormat.
func ParseMappingFormat(value string) (MappingFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "yaml", "yml":
		return MappingYAML, nil
	case "json":
		return MappingJSON, nil
	default:
		return "", fmt.Errorf("unsupported mapping format %q", value)
	}
}

// FormatForPath guesses the format from the file extension, falling back to
// YAML.
func FormatForPath(path m.Path) MappingFormat {
	if strings.EqualFold(filepath.Ext(string(path)), ".json") {
		return MappingJSON
	}

	return MappingYAML
}

// MappingStore persists rename maps.
type MappingStore interface {
	SaveMapping(ctx context.Context, path m.Path, format MappingFormat, doc m.MappingDocument) error
	LoadMapping(ctx context.Context, path m.Path) (m.MappingDocument, error)
}

type mappingStore struct{}

// NewMappingStore returns a MappingStore writing to the local disk.
func NewMappingStore() MappingStore {
	return &mappingStore{}
}

func (s *mappingStore) SaveMapping(ctx context.Context, path m.Path, format MappingFormat, doc m.MappingDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if doc.Version == 0 {
		doc.Version = CurrentMappingVersion
	}

	data, err := encodeMapping(format, doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(string(path)); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create mapping directory: %w", err)
		}
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write mapping %s: %w", path, err)
	}

	return nil
}

func (s *mappingStore) LoadMapping(ctx context.Context, path m.Path) (m.MappingDocument, error) {
	if err := ctx.Err(); err != nil {
		return m.MappingDocument{}, err
	}

	// #nosec G304 - path is supplied by the user on purpose
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.MappingDocument{}, fmt.Errorf("read mapping %s: %w", path, err)
	}

	var doc m.MappingDocument

	switch FormatForPath(path) {
	case MappingJSON:
		err = json.Unmarshal(data, &doc)
	case MappingYAML:
		err = yaml.Unmarshal(data, &doc)
	}

	if err != nil {
		return m.MappingDocument{}, fmt.Errorf("decode mapping %s: %w", path, err)
	}

	return doc, nil
}

func encodeMapping(format MappingFormat, doc m.MappingDocument) ([]byte, error) {
	switch format {
	case MappingJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode mapping as json: %w", err)
		}

		return append(data, '\n'), nil
	case MappingYAML, "":
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode mapping as yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode mapping as yaml: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported mapping format %q", format)
	}
}

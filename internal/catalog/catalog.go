// Package catalog loads the activity seed that a directory starts from.
//
// A catalog is a JSON object mapping activity name to its record, the same
// shape GET /activities returns. Documents are checked against an embedded
// JSON schema before decoding, and object key order is kept so the directory
// lists activities the way the catalog author wrote them.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"example.com/signup/internal/domain"
)

//go:embed default.json
var defaultCatalog []byte

//go:embed schema.json
var schemaDocument []byte

// ErrInvalidCatalog wraps schema and decoding failures.
var ErrInvalidCatalog = errors.New("invalid activity catalog")

type record struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Default returns the built-in Mergington High catalog.
func Default() ([]domain.Activity, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) ([]domain.Activity, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	activities, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return activities, nil
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) ([]domain.Activity, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	return decodeOrdered(data)
}

func validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaDocument),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(errs, "; "))
	}
	return nil
}

func decodeOrdered(data []byte) ([]domain.Activity, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidCatalog)
	}

	var out []domain.Activity
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		name, _ := tok.(string)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidCatalog, name)
		}
		seen[name] = struct{}{}

		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, name, err)
		}
		out = append(out, domain.Activity{
			Name:            name,
			Description:     rec.Description,
			Schedule:        rec.Schedule,
			MaxParticipants: rec.MaxParticipants,
			Participants:    append([]string{}, rec.Participants...),
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after catalog", ErrInvalidCatalog)
	}
	return out, nil
}

package db

import (
	"errors"
	"fmt"
)

// FieldKind is the role a hash field plays in the reply index.
type FieldKind int

const (
	// FieldSearchable is a full-text field queried by the match clause.
	FieldSearchable FieldKind = iota
	// FieldStored is returned with hits but never searched.
	FieldStored
	// FieldRanked is a sortable number feeding the ranking expression.
	FieldRanked
)

func (k FieldKind) String() string {
	switch k {
	case FieldSearchable:
		return "searchable"
	case FieldStored:
		return "stored"
	case FieldRanked:
		return "ranked"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// IndexField is one schema entry.
type IndexField struct {
	Name   string
	Kind   FieldKind
	Weight float64 // searchable only; 0 keeps the server default (1.0)
}

// IndexDefinition describes a reply index over hashes sharing one key prefix.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []IndexField
}

// Validate checks that the definition can be created.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if idx.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	searchable := 0
	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case FieldSearchable:
			searchable++
			if f.Weight < 0 {
				return fmt.Errorf("negative weight on field %s", f.Name)
			}
		case FieldStored, FieldRanked:
			if f.Weight != 0 {
				return fmt.Errorf("weight on %s field %s", f.Kind, f.Name)
			}
		default:
			return fmt.Errorf("field %s: unknown kind %d", f.Name, int(f.Kind))
		}
	}
	if searchable == 0 {
		return errors.New("at least one searchable field is required")
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
// Wildcard names such as sw_* are valid search targets but cannot be created.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}

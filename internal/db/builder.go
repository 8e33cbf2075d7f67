package db

import (
	"strconv"
	"strings"
)

// IndexBuilder assembles an IndexDefinition fluently.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition for the named index.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix sets the key prefix of the indexed hashes.
func (b *IndexBuilder) Prefix(prefix string) *IndexBuilder {
	b.def.Prefix = prefix
	return b
}

// WeightedText adds a searchable field. weight 0 keeps the server default.
func (b *IndexBuilder) WeightedText(name string, weight float64) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldSearchable, Weight: weight})
}

// StoredText adds a field that is returned with hits but not searched.
func (b *IndexBuilder) StoredText(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldStored})
}

// SortableNumeric adds a ranking input.
func (b *IndexBuilder) SortableNumeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldRanked})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns a copy of the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// String renders the definition the way FT.CREATE would read it.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name, "ON", "HASH"}
	if idx.Prefix != "" {
		parts = append(parts, "PREFIX", idx.Prefix)
	}
	parts = append(parts, "SCHEMA")
	for _, f := range idx.Fields {
		parts = append(parts, f.Name)
		switch f.Kind {
		case FieldSearchable:
			parts = append(parts, "TEXT")
			if f.Weight > 0 {
				parts = append(parts, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
			}
		case FieldStored:
			parts = append(parts, "TEXT", "NOINDEX")
		case FieldRanked:
			parts = append(parts, "NUMERIC", "SORTABLE")
		}
	}
	return strings.Join(parts, " ")
}

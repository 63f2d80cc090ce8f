package tables

import "github.com/apache/arrow/go/v18/arrow"

const (
	comment = "comment"
	unit    = "unit"
)

// MetadataBuilder is a convenience type to aid readability of code that
// specifies metadata for Arrow fields.
type MetadataBuilder struct {
	keys   []string
	values []string
}

func NewMetadataBuilder() *MetadataBuilder {
	return &MetadataBuilder{}
}

func (b *MetadataBuilder) Add(key, value string) *MetadataBuilder {
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
	return b
}

// Comment documents the field for readers of the parquet file.
func (b *MetadataBuilder) Comment(value string) *MetadataBuilder {
	return b.Add(comment, value)
}

// Unit records the unit a numeric field is measured in.
func (b *MetadataBuilder) Unit(value string) *MetadataBuilder {
	return b.Add(unit, value)
}

// Build constructs and returns the arrow.Metadata.
func (b *MetadataBuilder) Build() arrow.Metadata {
	return arrow.NewMetadata(b.keys, b.values)
}

// commented returns metadata holding only a comment.
func commented(value string) arrow.Metadata {
	return NewMetadataBuilder().Comment(value).Build()
}

var statusType = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Uint8,
	ValueType: arrow.BinaryTypes.String,
	Ordered:   false,
}

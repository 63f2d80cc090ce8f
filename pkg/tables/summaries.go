package tables

import (
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/willbeason/evalboard/pkg/scheme"
	"github.com/willbeason/evalboard/pkg/scoring"
)

const SchemeSummariesName = "scheme_summaries"

func statusCountField(s scoring.Status) arrow.Field {
	return arrow.Field{
		Name:     "count_" + strings.ToLower(s.String()),
		Type:     arrow.PrimitiveTypes.Uint32,
		Metadata: commented("The number of indicators with status " + s.String()),
	}
}

var SchemeSummaries = arrow.NewSchema(append([]arrow.Field{
	{Name: "scheme",
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("The scheme's name, its file name without extension"),
	},
	{Name: "file",
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("The file the scheme was uploaded as"),
	},
	{Name: "uploaded",
		Type:     arrow.FixedWidthTypes.Timestamp_ms,
		Metadata: commented("When the scheme's file was last modified"),
	},
	{Name: "total_score",
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: NewMetadataBuilder().Comment("The weighted mean score of the scheme's scored indicators").Unit("points").Build(),
		Nullable: true,
	},
	{Name: "indicators",
		Type:     arrow.PrimitiveTypes.Uint32,
		Metadata: commented("The number of indicators in the scheme"),
	},
	{Name: "error",
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("Why the scheme could not be summarized, or null"),
		Nullable: true,
	},
}, statusCountFields()...), nil)

func statusCountFields() []arrow.Field {
	fields := make([]arrow.Field, len(scoring.Statuses))
	for i, s := range scoring.Statuses {
		fields[i] = statusCountField(s)
	}
	return fields
}

// SchemeSummariesRecord builds a SchemeSummaries record. The caller releases
// the record.
func SchemeSummariesRecord(summaries []scheme.Summary) arrow.Record {
	recordBuilder := array.NewRecordBuilder(memory.NewGoAllocator(), SchemeSummaries)
	defer recordBuilder.Release()

	schemes := recordBuilder.Field(0).(*array.StringBuilder)
	files := recordBuilder.Field(1).(*array.StringBuilder)
	uploaded := recordBuilder.Field(2).(*array.TimestampBuilder)
	totals := recordBuilder.Field(3).(*array.Float64Builder)
	indicators := recordBuilder.Field(4).(*array.Uint32Builder)
	errs := recordBuilder.Field(5).(*array.StringBuilder)

	for _, s := range summaries {
		schemes.Append(s.Stem())
		files.Append(s.Name)
		uploaded.Append(arrow.Timestamp(s.ModTime.UnixMilli()))
		appendScore(totals, s.Total)
		indicators.Append(uint32(s.Indicators))

		if s.Err != nil {
			errs.Append(s.Err.Error())
		} else {
			errs.AppendNull()
		}

		for i, status := range scoring.Statuses {
			recordBuilder.Field(6 + i).(*array.Uint32Builder).Append(uint32(s.Counts.Of(status)))
		}
	}

	return recordBuilder.NewRecord()
}

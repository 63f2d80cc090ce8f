package tables

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/scoring"
	"github.com/willbeason/evalboard/pkg/table"
)

const (
	ScoredIndicatorsName = "scored_indicators"

	ScoreFieldName  = "score"
	StatusFieldName = "status"

	scoreComment  = "The indicator's score from 0 to 100, or null if it could not be scored"
	statusComment = "The score's classification: excellent, good, pass, fail, or unknown"
)

var ScoredIndicators = arrow.NewSchema([]arrow.Field{
	{Name: scoring.ColumnName,
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("The name of the evaluated indicator"),
	},
	{Name: scoring.ColumnValue,
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: commented("The measured value of the indicator"),
		Nullable: true,
	},
	{Name: scoring.ColumnWeight,
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: commented("The weight of the indicator in the scheme's total score"),
		Nullable: true,
	},
	{Name: scoring.ColumnPass,
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: commented("The value which scores 60"),
		Nullable: true,
	},
	{Name: scoring.ColumnExcellent,
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: commented("The value at and above which the indicator scores 100"),
		Nullable: true,
	},
	{Name: scoring.ColumnUnit,
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("The unit the value and thresholds are measured in"),
	},
	{Name: ScoreFieldName,
		Type:     arrow.PrimitiveTypes.Float64,
		Metadata: NewMetadataBuilder().Comment(scoreComment).Unit("points").Build(),
		Nullable: true,
	},
	{Name: StatusFieldName,
		Type:     statusType,
		Metadata: commented(statusComment),
	},
}, nil)

func appendFloat(b *array.Float64Builder, c table.Cell) {
	if v, ok := c.Float(); ok {
		b.Append(v)
	} else {
		b.AppendNull()
	}
}

func appendScore(b *array.Float64Builder, score *float64) {
	if score == nil {
		b.AppendNull()
	} else {
		b.Append(*score)
	}
}

// ScoredIndicatorsRecord builds a ScoredIndicators record. Statuses are
// labeled in l. The caller releases the record.
func ScoredIndicatorsRecord(scored []scoring.ScoredIndicator, l locale.Locale) (arrow.Record, error) {
	recordBuilder := array.NewRecordBuilder(memory.NewGoAllocator(), ScoredIndicators)
	defer recordBuilder.Release()

	names := recordBuilder.Field(0).(*array.StringBuilder)
	values := recordBuilder.Field(1).(*array.Float64Builder)
	weights := recordBuilder.Field(2).(*array.Float64Builder)
	passes := recordBuilder.Field(3).(*array.Float64Builder)
	excellents := recordBuilder.Field(4).(*array.Float64Builder)
	units := recordBuilder.Field(5).(*array.StringBuilder)
	scores := recordBuilder.Field(6).(*array.Float64Builder)
	statuses := recordBuilder.Field(7).(*array.BinaryDictionaryBuilder)

	for _, s := range scored {
		names.Append(s.Name)
		appendFloat(values, s.Value)
		appendFloat(weights, s.Weight)
		appendFloat(passes, s.Pass)
		appendFloat(excellents, s.Excellent)
		units.Append(s.Unit)
		appendScore(scores, s.Score)

		err := statuses.AppendString(s.Status.Label(l))
		if err != nil {
			return nil, fmt.Errorf("appending status of %q: %w", s.Name, err)
		}
	}

	return recordBuilder.NewRecord(), nil
}

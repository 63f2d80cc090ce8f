package tables

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/scoring"
)

const ComparisonsName = "comparisons"

func sideFields(side string) []arrow.Field {
	return []arrow.Field{
		{Name: "value_" + side,
			Type:     arrow.PrimitiveTypes.Float64,
			Metadata: commented(fmt.Sprintf("The indicator's value in scheme %s, or null if %s lacks it", side, side)),
			Nullable: true,
		},
		{Name: "score_" + side,
			Type:     arrow.PrimitiveTypes.Float64,
			Metadata: commented(fmt.Sprintf("The indicator's score in scheme %s", side)),
			Nullable: true,
		},
		{Name: "status_" + side,
			Type:     statusType,
			Metadata: commented(fmt.Sprintf("The indicator's status in scheme %s", side)),
			Nullable: true,
		},
	}
}

var Comparisons = arrow.NewSchema(concat(
	[]arrow.Field{{Name: scoring.ColumnName,
		Type:     arrow.BinaryTypes.String,
		Metadata: commented("The name of the compared indicator"),
	}},
	sideFields("a"),
	sideFields("b"),
	[]arrow.Field{{Name: "score_difference",
		Type: arrow.PrimitiveTypes.Float64,
		Metadata: commented("Scheme a's score minus scheme b's, counting a missing indicator as 0. " +
			"Null if either scheme has the indicator without a score"),
		Nullable: true,
	}},
), nil)

func concat(fields ...[]arrow.Field) []arrow.Field {
	var result []arrow.Field
	for _, f := range fields {
		result = append(result, f...)
	}
	return result
}

func appendSide(recordBuilder *array.RecordBuilder, offset int, side scoring.Side, l locale.Locale) error {
	values := recordBuilder.Field(offset).(*array.Float64Builder)
	scores := recordBuilder.Field(offset + 1).(*array.Float64Builder)
	statuses := recordBuilder.Field(offset + 2).(*array.BinaryDictionaryBuilder)

	if !side.Present {
		values.AppendNull()
		scores.AppendNull()
		statuses.AppendNull()
		return nil
	}

	appendFloat(values, side.Value)
	appendScore(scores, side.Score)
	return statuses.AppendString(side.Status.Label(l))
}

// ComparisonsRecord builds a Comparisons record. The caller releases the
// record.
func ComparisonsRecord(c scoring.Comparison, l locale.Locale) (arrow.Record, error) {
	recordBuilder := array.NewRecordBuilder(memory.NewGoAllocator(), Comparisons)
	defer recordBuilder.Release()

	names := recordBuilder.Field(0).(*array.StringBuilder)
	differences := recordBuilder.Field(7).(*array.Float64Builder)

	for _, ind := range c.Indicators {
		names.Append(ind.Name)

		err := appendSide(recordBuilder, 1, ind.A, l)
		if err != nil {
			return nil, fmt.Errorf("appending %q: %w", ind.Name, err)
		}
		err = appendSide(recordBuilder, 4, ind.B, l)
		if err != nil {
			return nil, fmt.Errorf("appending %q: %w", ind.Name, err)
		}

		appendScore(differences, ind.Difference)
	}

	return recordBuilder.NewRecord(), nil
}

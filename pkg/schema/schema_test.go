package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/table"
)

func day(d int) table.Cell {
	return table.TimeCell(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
}

func sampleTable() *table.Table {
	return table.New("sample",
		table.NewColumn("score", table.Float64,
			table.NumberCell(1), table.NumberCell(2), table.NumberCell(3), table.NumberCell(4), table.NullCell()),
		table.NewColumn("team", table.Object,
			table.TextCell("B"), table.TextCell("A"), table.TextCell("A"), table.TextCell("B"), table.NullCell()),
		table.NewColumn("at", table.Timestamp,
			day(3), day(1), day(5), day(2), day(4)),
		table.NewColumn("batch", table.Timestamp,
			day(1), day(1), day(1), day(1), day(1)),
		table.NewColumn("note", table.Object,
			table.TextCell("ok"), table.TextCell("slow"), table.TextCell("响应慢"), table.TextCell("x"), table.NullCell()),
	)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	got, err := Describe(sampleTable())
	require.NoError(t, err)

	require.Equal(t, []string{"score"}, got.NumericColumns())
	require.Equal(t, []string{"team", "batch"}, got.CategoricalColumns())
	require.Equal(t, []string{"at"}, got.DateColumns())
	require.Equal(t, []string{"note"}, got.TextColumns())

	score, ok := got.Feature("score")
	require.True(t, ok)
	require.Equal(t, 4, score.NonNull)
	require.Equal(t, 1, score.Null)
	require.InDelta(t, 20.0, score.NullPercentage, 1e-9)
	numeric := score.Stats.(NumericStats)
	require.Equal(t, 1.0, *numeric.Min)
	require.Equal(t, 4.0, *numeric.Max)
	require.InDelta(t, 2.5, *numeric.Mean, 1e-12)
	require.InDelta(t, 1.2909944487, *numeric.Std, 1e-9)

	team, _ := got.Feature("team")
	categorical := team.Stats.(CategoricalStats)
	require.Equal(t, 2, categorical.UniqueValues)
	require.Equal(t, []ValueCount{{Value: "B", Count: 2}, {Value: "A", Count: 2}}, categorical.TopValues)

	at, _ := got.Feature("at")
	dates := at.Stats.(DateStats)
	require.True(t, dates.Min.Equal(day(1).Time))
	require.True(t, dates.Max.Equal(day(5).Time))

	note, _ := got.Feature("note")
	text := note.Stats.(TextStats)
	require.Equal(t, 4, *text.MaxLength)
	require.InDelta(t, 2.5, *text.MeanLength, 1e-12)
}

func TestDescribe_Undefined(t *testing.T) {
	t.Parallel()

	got, err := Describe(table.New("t",
		table.NewColumn("one", table.Int64, table.NumberCell(7), table.NullCell()),
		table.NewColumn("none", table.Float64, table.NullCell(), table.NullCell()),
	))
	require.NoError(t, err)

	one, _ := got.Feature("one")
	require.Equal(t, 7.0, *one.Stats.(NumericStats).Mean)
	require.Nil(t, one.Stats.(NumericStats).Std)

	none, _ := got.Feature("none")
	require.Equal(t, NumericStats{}, none.Stats)
	require.InDelta(t, 100.0, none.NullPercentage, 1e-9)
}

func TestDescribe_Empty(t *testing.T) {
	t.Parallel()

	got, err := Describe(table.New("t", table.NewColumn("name", table.Object)))
	require.NoError(t, err)

	name, _ := got.Feature("name")
	require.Equal(t, Text, name.Kind())
	require.Equal(t, 0.0, name.NullPercentage)
}

func TestDescribe_Ragged(t *testing.T) {
	t.Parallel()

	_, err := Describe(table.New("t",
		table.NewColumn("a", table.Int64, table.NumberCell(1)),
		table.NewColumn("b", table.Int64),
	))
	require.True(t, errors.Is(err, evalerr.ErrInput))
}

func TestDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	want, err := Describe(sampleTable())
	require.NoError(t, err)
	want.SpecialCategories = []SpecialCategoryRule{
		{Column: "team", Values: []string{"B"}},
		{Column: "batch", Values: []string{"2024-01-01 00:00:00"}},
	}
	want.Locale = "en"

	data, err := json.Marshal(want)
	require.NoError(t, err)

	got := &FeatureSchema{}
	require.NoError(t, json.Unmarshal(data, got))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, locale.English, got.Language())
}

func TestDocument_Decode(t *testing.T) {
	t.Parallel()

	in := `{
  "numeric_columns": ["value"],
  "categorical_columns": ["region", "tier"],
  "date_columns": [],
  "text_columns": ["comment"],
  "column_stats": {
    "tier": {"non_null_count": 3, "null_count": 0, "null_percentage": 0,
             "unique_values": 2, "top_values": {"gold": 2, "silver": 1}},
    "value": {"non_null_count": 2, "null_count": 1, "null_percentage": 33.3,
              "min": 1, "max": 2, "mean": 1.5, "std": null}
  },
  "special_categories": {
    "tier": {"values": ["gold"]},
    "region": {"values": [1, true]}
  }
}`

	got := &FeatureSchema{}
	require.NoError(t, json.Unmarshal([]byte(in), got))

	names := make([]string, len(got.Columns))
	for i, c := range got.Columns {
		names[i] = c.Name
	}
	require.Equal(t, []string{"tier", "value", "region", "comment"}, names)

	tier, _ := got.Feature("tier")
	require.Equal(t, []ValueCount{{Value: "gold", Count: 2}, {Value: "silver", Count: 1}},
		tier.Stats.(CategoricalStats).TopValues)

	value, _ := got.Feature("value")
	require.Nil(t, value.Stats.(NumericStats).Std)
	require.Equal(t, 1, value.Null)

	require.Equal(t, []SpecialCategoryRule{
		{Column: "tier", Values: []string{"gold"}},
		{Column: "region", Values: []string{"1", "true"}},
	}, got.SpecialCategories)
	require.Equal(t, locale.Chinese, got.Language())

	comment, _ := got.Feature("comment")
	require.Equal(t, Text, comment.Kind())
}

func TestDocument_Errors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		in   string
	}{
		{name: "duplicate listing", in: `{"numeric_columns": ["a"], "text_columns": ["a"]}`},
		{name: "unlisted stats", in: `{"numeric_columns": [], "column_stats": {"a": {}}}`},
		{name: "stats not an object", in: `{"column_stats": []}`},
		{name: "bad date", in: `{"date_columns": ["d"], "column_stats": {"d": {"min": "yesterday"}}}`},
		{name: "bad category value", in: `{"special_categories": {"a": {"values": [[1]]}}}`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, json.Unmarshal([]byte(tc.in), &FeatureSchema{}))
		})
	}
}

func TestStore(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), time.Minute)

	_, err := store.Load("missing")
	require.True(t, errors.Is(err, evalerr.ErrConfiguration))

	want, err := Describe(sampleTable())
	require.NoError(t, err)
	require.NoError(t, store.Save("sample", want))

	got, err := store.Load("sample")
	require.NoError(t, err)
	require.Equal(t, want.Names(), got.Names())

	fromFile, err := LoadFile(store.Path("sample"))
	require.NoError(t, err)
	require.Equal(t, want.Names(), fromFile.Names())

	_, err = LoadFile(store.Path("missing"))
	require.True(t, errors.Is(err, evalerr.ErrConfiguration))
}

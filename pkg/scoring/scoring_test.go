package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/locale"
	"github.com/willbeason/evalboard/pkg/table"
)

func num(v float64) table.Cell { return table.NumberCell(v) }

func text(s string) table.Cell { return table.TextCell(s) }

func ptr(v float64) *float64 { return &v }

func TestScoreValue(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		v    float64
		want float64
	}{
		{name: "zero", v: 0, want: 0},
		{name: "below pass", v: 30, want: 30},
		{name: "at pass", v: 60, want: 60},
		{name: "between", v: 80, want: 60 + 20*40.0/30},
		{name: "at excellent", v: 90, want: 100},
		{name: "above excellent", v: 1000, want: 100},
		{name: "negative", v: -60, want: -60},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ScoreValue(tc.v, 60, 90)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestScoreValue_Monotonic(t *testing.T) {
	t.Parallel()

	thresholds := [][2]float64{{60, 90}, {0.5, 0.99}, {1, 2}, {100, 101}}
	for _, th := range thresholds {
		prev, err := ScoreValue(-200, th[0], th[1])
		require.NoError(t, err)
		for v := -200.0; v <= 200; v += 0.25 {
			got, err := ScoreValue(v, th[0], th[1])
			require.NoError(t, err)
			require.GreaterOrEqual(t, got, prev, "pass %v excellent %v value %v", th[0], th[1], v)
			prev = got
		}
	}
}

func TestScoreValue_Boundaries(t *testing.T) {
	t.Parallel()

	got, err := ScoreValue(90, 60, 90)
	require.NoError(t, err)
	require.Equal(t, 100.0, got)

	got, err = ScoreValue(89.999999, 60, 90)
	require.NoError(t, err)
	require.Less(t, got, 100.0)

	require.Equal(t, Excellent, StatusOf(ptr(90)))
	require.Equal(t, Good, StatusOf(ptr(89.999)))
	require.Equal(t, Good, StatusOf(ptr(75)))
	require.Equal(t, Pass, StatusOf(ptr(74.999)))
	require.Equal(t, Pass, StatusOf(ptr(60)))
	require.Equal(t, Fail, StatusOf(ptr(59.999)))
	require.Equal(t, Unknown, StatusOf(nil))
}

func TestScoreValue_Degenerate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name            string
		pass, excellent float64
	}{
		{name: "zero pass", pass: 0, excellent: 10},
		{name: "equal thresholds", pass: 50, excellent: 50},
		{name: "reversed thresholds", pass: 90, excellent: 60},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Values on either side of the thresholds fail alike.
			for _, v := range []float64{-1, 0, 55, 75, 100} {
				_, err := ScoreValue(v, tc.pass, tc.excellent)
				require.True(t, errors.Is(err, evalerr.ErrDegenerateThresholds), "value %v", v)
			}
		})
	}
}

func TestScore_Null(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name                   string
		value, pass, excellent table.Cell
	}{
		{name: "null value", value: table.NullCell(), pass: num(60), excellent: num(90)},
		{name: "text value", value: text("n/a"), pass: num(60), excellent: num(90)},
		{name: "null pass", value: num(70), pass: table.NullCell(), excellent: num(90)},
		{name: "null excellent", value: num(70), pass: num(60), excellent: table.NullCell()},
		// Null is reported before thresholds are checked.
		{name: "null with degenerate thresholds", value: table.NullCell(), pass: num(0), excellent: num(0)},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Score(tc.value, tc.pass, tc.excellent)
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}

	got, err := Score(text("80"), text("60"), num(90))
	require.NoError(t, err)
	require.InDelta(t, 86.6667, *got, 1e-4)
}

func indicatorTable(name string, rows ...[]table.Cell) *table.Table {
	cols := make([]*table.Column, len(RequiredColumns))
	for j, col := range RequiredColumns {
		cols[j] = table.NewColumn(col, table.Object)
		for _, row := range rows {
			cols[j].Cells = append(cols[j].Cells, row[j])
		}
	}
	return table.New(name, cols...)
}

func row(name string, value, weight, pass, excellent table.Cell) []table.Cell {
	return []table.Cell{text(name), value, weight, pass, excellent, text("%")}
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	scored, err := ScoreTable(indicatorTable("scheme",
		row("uptime", num(80), num(1), num(60), num(90)),
		row("latency", num(50), num(1), num(60), num(90)),
	))
	require.NoError(t, err)
	require.Len(t, scored, 2)

	require.InDelta(t, 86.67, *scored[0].Score, 0.005)
	require.Equal(t, Good, scored[0].Status)
	require.InDelta(t, 50.0, *scored[1].Score, 1e-9)
	require.Equal(t, Fail, scored[1].Status)

	agg, err := Aggregate(scored)
	require.NoError(t, err)
	require.InDelta(t, 68.3, agg.Total, 0.05)
	require.Equal(t, StatusCounts{Good: 1, Fail: 1}, agg.Counts)
	require.Equal(t, 1, agg.Counts.Achieved())
}

func TestAggregate_ExcludesNullScores(t *testing.T) {
	t.Parallel()

	rows := [][]table.Cell{
		row("a", num(80), num(2), num(60), num(90)),
		row("b", num(40), num(1), num(60), num(90)),
	}
	without, err := ScoreTable(indicatorTable("without", rows...))
	require.NoError(t, err)

	rows = append(rows, row("c", table.NullCell(), num(1_000_000), num(60), num(90)))
	with, err := ScoreTable(indicatorTable("with", rows...))
	require.NoError(t, err)

	want, err := Aggregate(without)
	require.NoError(t, err)
	got, err := Aggregate(with)
	require.NoError(t, err)

	require.Equal(t, want.Total, got.Total)
	require.Equal(t, 1, got.Counts.Unknown)
}

func TestAggregate_Errors(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		rows [][]table.Cell
		want error
	}{
		{
			name: "no rows",
			want: evalerr.ErrAggregation,
		},
		{
			name: "no scores",
			rows: [][]table.Cell{row("a", table.NullCell(), num(1), num(60), num(90))},
			want: evalerr.ErrAggregation,
		},
		{
			name: "zero weight",
			rows: [][]table.Cell{row("a", num(70), num(0), num(60), num(90))},
			want: evalerr.ErrAggregation,
		},
		{
			name: "negative weight",
			rows: [][]table.Cell{row("a", num(70), num(-1), num(60), num(90))},
			want: evalerr.ErrInput,
		},
		{
			name: "missing weight",
			rows: [][]table.Cell{row("a", num(70), table.NullCell(), num(60), num(90))},
			want: evalerr.ErrInput,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			scored, err := ScoreTable(indicatorTable("t", tc.rows...))
			require.NoError(t, err)

			_, err = Aggregate(scored)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestScoreTable_Errors(t *testing.T) {
	t.Parallel()

	_, err := ScoreTable(indicatorTable("bad",
		row("ok", num(70), num(1), num(60), num(90)),
		row("flat", num(70), num(1), num(60), num(60)),
	))
	require.True(t, errors.Is(err, evalerr.ErrDegenerateThresholds))
	require.ErrorContains(t, err, "flat")

	missing := indicatorTable("missing", row("a", num(1), num(1), num(1), num(2)))
	missing.Columns = missing.Columns[:5]
	_, err = ScoreTable(missing)
	require.True(t, errors.Is(err, evalerr.ErrSchemaMismatch))
	require.ErrorContains(t, err, ColumnUnit)
}

func TestIndicators_Aliases(t *testing.T) {
	t.Parallel()

	in := table.New("方案A",
		table.NewColumn("指标名称", table.Object, text("响应时间")),
		table.NewColumn("指标值", table.Float64, num(80)),
		table.NewColumn("权重", table.Int64, num(1)),
		table.NewColumn("评分标准_及格线", table.Int64, num(60)),
		table.NewColumn("评分标准_优秀线", table.Int64, num(90)),
		table.NewColumn("单位", table.Object, text("ms")),
	)

	got, err := Indicators(in)
	require.NoError(t, err)
	require.Equal(t, []Indicator{{
		Name:      "响应时间",
		Value:     num(80),
		Weight:    num(1),
		Pass:      num(60),
		Excellent: num(90),
		Unit:      "ms",
	}}, got)
}

func TestTopBottom(t *testing.T) {
	t.Parallel()

	scored, err := ScoreTable(indicatorTable("t",
		row("a", num(70), num(1), num(60), num(90)),
		row("b", table.NullCell(), num(1), num(60), num(90)),
		row("c", num(95), num(1), num(60), num(90)),
		row("d", num(30), num(1), num(60), num(90)),
		row("e", num(99), num(1), num(60), num(90)),
	))
	require.NoError(t, err)

	names := func(s []ScoredIndicator) []string {
		var result []string
		for _, i := range s {
			result = append(result, i.Name)
		}
		return result
	}

	// c and e tie at 100 and keep table order.
	require.Equal(t, []string{"c", "e", "a"}, names(Top(scored, 3)))
	require.Equal(t, []string{"d", "a", "c"}, names(Bottom(scored, 3)))
	require.Equal(t, []string{"d", "a", "c", "e"}, names(Bottom(scored, 10)))
	require.Empty(t, Top(scored, 0))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a, err := ScoreTable(indicatorTable("a",
		row("uptime", num(80), num(1), num(60), num(90)),
		row("latency", num(50), num(1), num(60), num(90)),
		row("cost", table.NullCell(), num(1), num(60), num(90)),
	))
	require.NoError(t, err)

	b, err := ScoreTable(indicatorTable("b",
		row("latency", num(90), num(1), num(60), num(90)),
		row("cost", num(60), num(1), num(60), num(90)),
		row("security", num(30), num(1), num(60), num(90)),
	))
	require.NoError(t, err)

	got, err := Compare(a, b)
	require.NoError(t, err)

	require.Len(t, got.Indicators, 4)
	var names []string
	for _, c := range got.Indicators {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"uptime", "latency", "cost", "security"}, names)

	uptime := got.Indicators[0]
	require.True(t, uptime.A.Present)
	require.False(t, uptime.B.Present)
	require.InDelta(t, 86.6667, *uptime.Difference, 1e-4)

	latency := got.Indicators[1]
	require.InDelta(t, -50, *latency.Difference, 1e-9)
	require.Equal(t, Fail, latency.A.Status)
	require.Equal(t, Excellent, latency.B.Status)

	require.Nil(t, got.Indicators[2].Difference)

	security := got.Indicators[3]
	require.False(t, security.A.Present)
	require.InDelta(t, -30, *security.Difference, 1e-9)

	require.InDelta(t, 68.3333, *got.TotalA, 1e-4)
	require.InDelta(t, (100+60+30)/3.0, *got.TotalB, 1e-9)
	require.InDelta(t, *got.TotalA-*got.TotalB, *got.Difference, 1e-9)
	require.Equal(t, 1, got.CountsA.Unknown)
}

func TestCompare_Unaggregatable(t *testing.T) {
	t.Parallel()

	a, err := ScoreTable(indicatorTable("a", row("x", table.NullCell(), num(1), num(60), num(90))))
	require.NoError(t, err)
	b, err := ScoreTable(indicatorTable("b", row("x", num(70), num(1), num(60), num(90))))
	require.NoError(t, err)

	got, err := Compare(a, b)
	require.NoError(t, err)
	require.Nil(t, got.TotalA)
	require.NotNil(t, got.TotalB)
	require.Nil(t, got.Difference)
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "优秀", Excellent.Label(locale.Chinese))
	require.Equal(t, "未达标", Fail.Label(locale.Chinese))
	require.Equal(t, "未知", Unknown.Label(locale.Chinese))
	require.Equal(t, "Good", Good.Label(locale.English))
	require.Equal(t, "Pass", Pass.String())
}

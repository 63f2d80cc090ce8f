package cmdutil

import (
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	"golang.org/x/term"

	"github.com/willbeason/evalboard/pkg/table"
)

const defaultWidth = 80

// NewTable starts a bordered terminal table with the given header.
func NewTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(true)
	t.SetRowLine(true)
	t.SetHeader(header)
	return t
}

// FormatScore renders a score to two decimals, or "-" when there is none.
func FormatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}

// FormatFloat renders f with up to six significant digits.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// FormatCell renders a cell for display, with "-" for null.
func FormatCell(c table.Cell) string {
	if c.IsNull() {
		return "-"
	}
	if c.Kind == table.Number {
		return FormatFloat(c.Num)
	}
	return c.String()
}

// NewProgress starts progress bars as wide as the terminal. Output which is
// not a terminal gets a fixed width.
func NewProgress() *mpb.Progress {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return mpb.New(mpb.WithWidth(width))
}

// AddCountBar adds a bar counting total items, removed once complete.
func AddCountBar(p *mpb.Progress, name string, total int) *mpb.Bar {
	return p.AddBar(int64(total),
		mpb.AppendDecorators(decor.AverageETA(decor.ET_STYLE_GO)),
		mpb.PrependDecorators(decor.Name(name)),
		mpb.PrependDecorators(decor.CountersNoUnit("%d/%d", decor.WCSyncSpace)),
		mpb.BarRemoveOnComplete(),
	)
}

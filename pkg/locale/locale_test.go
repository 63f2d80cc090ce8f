package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want Locale
	}{
		{in: "", want: Default},
		{in: "zh", want: Chinese},
		{in: "zh-CN", want: Chinese},
		{in: "en", want: English},
		{in: "en-GB", want: English},
		{in: "not a tag!", want: Default},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Parse(tc.in))
		})
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "未知", Chinese.Text(Unknown))
	require.Equal(t, "unknown", English.Text(Unknown))
	require.Equal(t, "未达标", Chinese.Text(Fail))
	require.Equal(t, "Excellent", English.Text(Excellent))
	require.Equal(t, "en", English.String())
	require.Equal(t, "zh", Chinese.String())
}

// Package locale renders the few user-visible words the evaluation packages
// write into data: the imputation placeholder and status labels.
package locale

import (
	"golang.org/x/text/language"
)

// Message identifies a localized word.
type Message int

const (
	Unknown Message = iota
	Excellent
	Good
	Pass
	Fail
)

// Locale is one of the supported display languages.
type Locale struct {
	index int
}

var supported = []language.Tag{
	language.Chinese,
	language.English,
}

var matcher = language.NewMatcher(supported)

var (
	Chinese = Locale{index: 0}
	English = Locale{index: 1}

	// Default is used when a schema does not name a locale.
	Default = Chinese
)

var messages = [][]string{
	{
		Unknown:   "未知",
		Excellent: "优秀",
		Good:      "良好",
		Pass:      "及格",
		Fail:      "未达标",
	},
	{
		Unknown:   "unknown",
		Excellent: "Excellent",
		Good:      "Good",
		Pass:      "Pass",
		Fail:      "Fail",
	},
}

// Parse resolves a BCP 47 tag such as "en", "zh-CN" or "en-US" to the closest
// supported locale. Empty or invalid tags resolve to Default.
func Parse(s string) Locale {
	if s == "" {
		return Default
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default
	}
	return Locale{index: index}
}

// String returns the canonical tag of l.
func (l Locale) String() string {
	return supported[l.index].String()
}

// Text returns m rendered in l.
func (l Locale) Text(m Message) string {
	return messages[l.index][m]
}

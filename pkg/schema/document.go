package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/willbeason/evalboard/pkg/table"
)

// document is the persisted JSON form of a FeatureSchema.
//
// column_stats, special_categories and top_values are JSON objects whose key
// order is meaningful: column_stats keeps table order, special_categories is
// the order rules are applied in, and top_values is most frequent first. They
// are kept raw here and decoded with decodeObject, which preserves order.
type document struct {
	NumericColumns     []string        `json:"numeric_columns"`
	CategoricalColumns []string        `json:"categorical_columns"`
	DateColumns        []string        `json:"date_columns"`
	TextColumns        []string        `json:"text_columns"`
	ColumnStats        json.RawMessage `json:"column_stats,omitempty"`
	SpecialCategories  json.RawMessage `json:"special_categories,omitempty"`
	Locale             string          `json:"locale,omitempty"`
}

type numericDoc struct {
	Counts
	NumericStats
}

type categoricalDoc struct {
	Counts
	UniqueValues int             `json:"unique_values"`
	TopValues    json.RawMessage `json:"top_values"`
}

type dateDoc struct {
	Counts
	Min *string `json:"min"`
	Max *string `json:"max"`
}

type textDoc struct {
	Counts
	TextStats
}

type specialCategoryDoc struct {
	Values []any `json:"values"`
}

// member is a single key/value pair of a JSON object.
type member struct {
	Key   string
	Value json.RawMessage
}

// decodeObject decodes a JSON object into its members, in document order.
// A JSON null or empty input decodes to no members.
func decodeObject(data []byte) ([]member, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []member
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		err = dec.Decode(&value)
		if err != nil {
			return nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		members = append(members, member{Key: key, Value: value})
	}

	_, err = dec.Token()
	if err != nil {
		return nil, err
	}
	return members, nil
}

// encodeObject encodes members as a JSON object, in order.
func encodeObject(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(table.TimeLayout)
	return &s
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	for _, layout := range []string{table.TimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized time %q", *s)
}

// MarshalJSON encodes s as a feature schema document.
func (s *FeatureSchema) MarshalJSON() ([]byte, error) {
	doc := document{
		NumericColumns:     s.NumericColumns(),
		CategoricalColumns: s.CategoricalColumns(),
		DateColumns:        s.DateColumns(),
		TextColumns:        s.TextColumns(),
		Locale:             s.Locale,
	}

	stats := make([]member, len(s.Columns))
	for i, c := range s.Columns {
		value, err := marshalStats(c)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		stats[i] = member{Key: c.Name, Value: value}
	}
	var err error
	doc.ColumnStats, err = encodeObject(stats)
	if err != nil {
		return nil, err
	}

	if len(s.SpecialCategories) > 0 {
		rules := make([]member, len(s.SpecialCategories))
		for i, rule := range s.SpecialCategories {
			values := make([]any, len(rule.Values))
			for j, v := range rule.Values {
				values[j] = v
			}
			value, err := json.Marshal(specialCategoryDoc{Values: values})
			if err != nil {
				return nil, err
			}
			rules[i] = member{Key: rule.Column, Value: value}
		}
		doc.SpecialCategories, err = encodeObject(rules)
		if err != nil {
			return nil, err
		}
	}

	return json.Marshal(doc)
}

func marshalStats(c ColumnFeature) ([]byte, error) {
	switch stats := c.Stats.(type) {
	case NumericStats:
		return json.Marshal(numericDoc{Counts: c.Counts, NumericStats: stats})
	case CategoricalStats:
		top := make([]member, len(stats.TopValues))
		for i, vc := range stats.TopValues {
			top[i] = member{Key: vc.Value, Value: json.RawMessage(strconv.Itoa(vc.Count))}
		}
		topValues, err := encodeObject(top)
		if err != nil {
			return nil, err
		}
		return json.Marshal(categoricalDoc{Counts: c.Counts, UniqueValues: stats.UniqueValues, TopValues: topValues})
	case DateStats:
		return json.Marshal(dateDoc{Counts: c.Counts, Min: formatTime(stats.Min), Max: formatTime(stats.Max)})
	case TextStats:
		return json.Marshal(textDoc{Counts: c.Counts, TextStats: stats})
	default:
		return nil, fmt.Errorf("unknown column stats %T", c.Stats)
	}
}

// UnmarshalJSON decodes a feature schema document. Columns keep the order of
// column_stats; columns which are listed but have no statistics follow in list
// order. A column listed under two kinds is an error.
func (s *FeatureSchema) UnmarshalJSON(data []byte) error {
	var doc document
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return err
	}

	kinds := make(map[string]ColumnKind)
	var listed []string
	for _, list := range []struct {
		kind  ColumnKind
		names []string
	}{
		{Numeric, doc.NumericColumns},
		{Categorical, doc.CategoricalColumns},
		{Date, doc.DateColumns},
		{Text, doc.TextColumns},
	} {
		for _, name := range list.names {
			if previous, found := kinds[name]; found {
				return fmt.Errorf("column %q listed as both %s and %s", name, previous, list.kind)
			}
			kinds[name] = list.kind
			listed = append(listed, name)
		}
	}

	stats, err := decodeObject(doc.ColumnStats)
	if err != nil {
		return fmt.Errorf("column_stats: %w", err)
	}

	result := FeatureSchema{Locale: doc.Locale}
	described := make(map[string]struct{}, len(stats))
	for _, m := range stats {
		kind, found := kinds[m.Key]
		if !found {
			return fmt.Errorf("column_stats: column %q is not listed under any kind", m.Key)
		}
		c, err := unmarshalStats(m.Key, kind, m.Value)
		if err != nil {
			return fmt.Errorf("column_stats: column %q: %w", m.Key, err)
		}
		result.Columns = append(result.Columns, c)
		described[m.Key] = struct{}{}
	}
	for _, name := range listed {
		if _, found := described[name]; !found {
			result.Columns = append(result.Columns, ColumnFeature{Name: name, Stats: emptyStats(kinds[name])})
		}
	}

	rules, err := decodeObject(doc.SpecialCategories)
	if err != nil {
		return fmt.Errorf("special_categories: %w", err)
	}
	for _, m := range rules {
		var rule specialCategoryDoc
		err = json.Unmarshal(m.Value, &rule)
		if err != nil {
			return fmt.Errorf("special_categories: %q: %w", m.Key, err)
		}
		values, err := categoryValues(rule.Values)
		if err != nil {
			return fmt.Errorf("special_categories: %q: %w", m.Key, err)
		}
		result.SpecialCategories = append(result.SpecialCategories, SpecialCategoryRule{Column: m.Key, Values: values})
	}

	*s = result
	return nil
}

func unmarshalStats(name string, kind ColumnKind, data []byte) (ColumnFeature, error) {
	c := ColumnFeature{Name: name}
	switch kind {
	case Numeric:
		var d numericDoc
		err := json.Unmarshal(data, &d)
		if err != nil {
			return c, err
		}
		c.Counts, c.Stats = d.Counts, d.NumericStats
	case Categorical:
		var d categoricalDoc
		err := json.Unmarshal(data, &d)
		if err != nil {
			return c, err
		}
		top, err := decodeObject(d.TopValues)
		if err != nil {
			return c, fmt.Errorf("top_values: %w", err)
		}
		stats := CategoricalStats{UniqueValues: d.UniqueValues}
		for _, m := range top {
			var count int
			err = json.Unmarshal(m.Value, &count)
			if err != nil {
				return c, fmt.Errorf("top_values: %q: %w", m.Key, err)
			}
			stats.TopValues = append(stats.TopValues, ValueCount{Value: m.Key, Count: count})
		}
		c.Counts, c.Stats = d.Counts, stats
	case Date:
		var d dateDoc
		err := json.Unmarshal(data, &d)
		if err != nil {
			return c, err
		}
		var stats DateStats
		stats.Min, err = parseTime(d.Min)
		if err != nil {
			return c, err
		}
		stats.Max, err = parseTime(d.Max)
		if err != nil {
			return c, err
		}
		c.Counts, c.Stats = d.Counts, stats
	case Text:
		var d textDoc
		err := json.Unmarshal(data, &d)
		if err != nil {
			return c, err
		}
		c.Counts, c.Stats = d.Counts, d.TextStats
	default:
		return c, errors.New("unknown column kind")
	}
	return c, nil
}

// categoryValues renders category values as the strings categorical cells
// hold after cleaning.
func categoryValues(values []any) ([]string, error) {
	result := make([]string, len(values))
	for i, v := range values {
		switch o := v.(type) {
		case string:
			result[i] = o
		case float64:
			result[i] = table.NumberCell(o).String()
		case bool:
			result[i] = strconv.FormatBool(o)
		default:
			return nil, fmt.Errorf("unsupported category value %v", v)
		}
	}
	return result, nil
}

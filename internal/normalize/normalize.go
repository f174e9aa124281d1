// Package normalize converts the upstream's heterogeneous chart payloads
// into ordered SeriesPoint and EarningsPoint slices.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/tidwall/gjson"
)

// Field aliases seen across upstream endpoints, in lookup order.
var (
	dateFields  = []string{"date", "ano", "year"}
	valueFields = []string{"value", "valor", "v"}
)

// Earnings record layout
const (
	earningsContainer = "dividends"
	earningDateField  = "earning_date"
	paymentDateField  = "payment_date"
	earningValueField = "value"
	earningTypeField  = "type"
)

// Series normalizes a chart payload. Two shapes are recognized, checked in
// this order:
//
//  1. an array of objects carrying a date-like and a numeric field
//  2. an object with parallel "categories" and "series[0].data" arrays
//
// Anything else, including nil or invalid JSON, yields an empty slice.
func Series(raw []byte) []core.SeriesPoint {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return []core.SeriesPoint{}
	}
	doc := gjson.ParseBytes(raw)

	if doc.IsArray() {
		return fromRecords(doc)
	}
	if doc.IsObject() {
		categories := doc.Get("categories")
		data := doc.Get("series.0.data")
		if categories.IsArray() && data.IsArray() {
			return fromCategories(categories.Array(), data.Array())
		}
	}
	return []core.SeriesPoint{}
}

func fromRecords(doc gjson.Result) []core.SeriesPoint {
	items := doc.Array()
	points := make([]core.SeriesPoint, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		date, ok := firstField(item, dateFields)
		if !ok {
			continue
		}
		value, _ := firstField(item, valueFields)
		points = append(points, core.SeriesPoint{
			Label: date.String(),
			Value: Number(value),
		})
	}
	return points
}

func fromCategories(categories, data []gjson.Result) []core.SeriesPoint {
	n := min(len(categories), len(data))
	points := make([]core.SeriesPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, core.SeriesPoint{
			Label: categories[i].String(),
			Value: Number(data[i]),
		})
	}
	return points
}

// Earnings normalizes a payout history and sorts it chronologically.
// Records with equal dates keep their upstream order.
func Earnings(raw []byte) []core.EarningsPoint {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return []core.EarningsPoint{}
	}
	records := gjson.GetBytes(raw, earningsContainer)
	if !records.IsArray() {
		return []core.EarningsPoint{}
	}

	type dated struct {
		point core.EarningsPoint
		at    time.Time
	}

	items := records.Array()
	rows := make([]dated, 0, len(items))
	for _, rec := range items {
		if !rec.IsObject() {
			continue
		}
		date := rec.Get(earningDateField).String()
		if date == "" {
			date = rec.Get(paymentDateField).String()
		}
		rows = append(rows, dated{
			point: core.EarningsPoint{
				Label: date,
				Value: Number(rec.Get(earningValueField)),
				Kind:  rec.Get(earningTypeField).String(),
			},
			at: ParseDate(date),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].at.Before(rows[j].at)
	})

	points := make([]core.EarningsPoint, len(rows))
	for i, r := range rows {
		points[i] = r.point
	}
	return points
}

// ParseDate reads DD/MM/YYYY or YYYY-MM-DD using fixed layouts only;
// day/month order is never guessed. Anything else is the Unix epoch.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02/01/2006", "2/1/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// Number coerces a JSON value to float64. Numbers pass through, numeric
// strings are parsed, everything else is 0.
func Number(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// IsEmpty reports whether a payload carries no data: absent, invalid,
// null, {} or [].
func IsEmpty(raw []byte) bool {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return true
	}
	doc := gjson.ParseBytes(raw)
	switch {
	case doc.Type == gjson.Null:
		return true
	case doc.IsArray():
		return len(doc.Array()) == 0
	case doc.IsObject():
		empty := true
		doc.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return empty
	}
	return false
}

func firstField(obj gjson.Result, names []string) (gjson.Result, bool) {
	for _, name := range names {
		if f := obj.Get(name); f.Exists() && f.Type != gjson.Null {
			return f, true
		}
	}
	return gjson.Result{}, false
}

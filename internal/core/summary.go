package core

import "github.com/shopspring/decimal"

// ClassificationAmount is an amount aggregated by classification label.
type ClassificationAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthOverview is a compact summary of one month of entries.
type MonthOverview struct {
	Month            MonthKey
	Total            decimal.Decimal
	Count            int
	ByClassification []ClassificationAmount
}

// Summarize aggregates entries into a MonthOverview. Classifications keep the
// order in which they first appear.
func Summarize(month MonthKey, entries []Dated) MonthOverview {
	ov := MonthOverview{Month: month, Total: decimal.Zero}
	idx := map[string]int{}
	for _, d := range entries {
		ov.Total = ov.Total.Add(d.Entry.Amount)
		ov.Count++
		i, ok := idx[d.Entry.Classification]
		if !ok {
			i = len(ov.ByClassification)
			idx[d.Entry.Classification] = i
			ov.ByClassification = append(ov.ByClassification, ClassificationAmount{Name: d.Entry.Classification, Amount: decimal.Zero})
		}
		ov.ByClassification[i].Amount = ov.ByClassification[i].Amount.Add(d.Entry.Amount)
	}
	return ov
}

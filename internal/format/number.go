// Package format renders scores and kill counts for display and export.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	thousand = 1_000
	million  = 1_000_000
	billion  = 1_000_000_000
)

// Formatter groups and abbreviates numbers for one display locale.
type Formatter struct {
	printer *message.Printer
}

func New(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Grouped renders v with the locale's grouping and decimal separators.
func (f *Formatter) Grouped(v float64) string {
	if v == 0 {
		return "0"
	}
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// Full is the entry-view format: below 1,000 the grouped value, otherwise
// "<abbreviated> <K|M|B> (<grouped>)".
func (f *Formatter) Full(v float64) string {
	if v == 0 {
		return "0"
	}
	full := f.Grouped(v)
	if v < thousand {
		return full
	}

	var abbr string
	switch {
	case v >= billion:
		abbr = f.abbreviate(v, billion, "B")
	case v >= million:
		abbr = f.abbreviate(v, million, "M")
	default:
		abbr = f.abbreviate(v, thousand, "K")
	}
	return abbr + " (" + full + ")"
}

// Compact is the report format. It abbreviates millions and billions only;
// anything below a million falls back to Full, K tier included.
func (f *Formatter) Compact(v float64) string {
	if v == 0 {
		return "0"
	}
	switch {
	case v >= billion:
		return f.abbreviate(v, billion, "B")
	case v >= million:
		return f.abbreviate(v, million, "M")
	}
	return f.Full(v)
}

func (f *Formatter) FullInt(v int64) string    { return f.Full(float64(v)) }
func (f *Formatter) CompactInt(v int64) string { return f.Compact(float64(v)) }

func (f *Formatter) abbreviate(v, unit float64, suffix string) string {
	return f.printer.Sprintf("%v", number.Decimal(v/unit, number.MaxFractionDigits(2))) + " " + suffix
}

// Package monthname formats month numbers as localized, title-cased names.
// Formatters are immutable and safe for concurrent use; nothing here touches
// process-wide locale state.
package monthname

import (
	"fmt"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "pt_BR"

// Formatter names months in one locale.
type Formatter struct {
	translator locales.Translator
	tag        language.Tag
}

// New returns a Formatter for locale ("pt_BR" or "en").
func New(locale string) (*Formatter, error) {
	switch locale {
	case "pt_BR", "":
		return &Formatter{translator: pt_BR.New(), tag: language.BrazilianPortuguese}, nil
	case "en":
		return &Formatter{translator: en.New(), tag: language.English}, nil
	default:
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}
}

// Locale returns the locale name of the underlying translator.
func (f *Formatter) Locale() string {
	return f.translator.Locale()
}

// Name returns the wide month name for month (1..12), title-cased. Out of
// range months yield an empty string.
func (f *Formatter) Name(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(f.tag).String(f.translator.MonthWide(time.Month(month)))
}

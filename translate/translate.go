// Package translate localizes the messages of the emulator.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("chip8cpu: locale: %v", err)
	}

	SetLocales(locales...)
}

// SetLocales selects the message printer for the preferred locales.
// With no locales, en-US is used.
func SetLocales(locales ...string) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

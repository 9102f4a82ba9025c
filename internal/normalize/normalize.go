package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Name folds user supplied names to a canonical form: NFC, lower case, single spaces.
func Name(name string) string {
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	return lower.String(name)
}

// Email lower-cases and trims an address. Local parts are treated as case-insensitive.
func Email(email string) string {
	return lower.String(strings.TrimSpace(email))
}

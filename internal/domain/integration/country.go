package integration

import "strings"

// FallbackCountryCode is used when an inbound order carries a country value
// that cannot be recognized. Orders normalized through the fallback carry a
// warning so the heuristic is visible to operators.
const FallbackCountryCode = "FR"

// countryNames maps full country names as emitted by known sales channels
// to their ISO-2 code. Lookup is case-insensitive.
var countryNames = map[string]string{
	"france":         "FR",
	"germany":        "DE",
	"allemagne":      "DE",
	"belgium":        "BE",
	"belgique":       "BE",
	"spain":          "ES",
	"espagne":        "ES",
	"italy":          "IT",
	"italie":         "IT",
	"netherlands":    "NL",
	"pays-bas":       "NL",
	"luxembourg":     "LU",
	"switzerland":    "CH",
	"suisse":         "CH",
	"portugal":       "PT",
	"austria":        "AT",
	"autriche":       "AT",
	"united kingdom": "GB",
	"royaume-uni":    "GB",
	"ireland":        "IE",
	"irlande":        "IE",
	"poland":         "PL",
	"pologne":        "PL",
	"united states":  "US",
	"etats-unis":     "US",
	"états-unis":     "US",
	"canada":         "CA",
	"monaco":         "MC",
}

// NormalizeCountry converts an inbound country value to an ISO-2 code. It
// accepts a 2-letter code in any case, or a known full country name. The
// returned flag reports whether the input was recognized; unrecognized
// input maps to FallbackCountryCode with recognized=false so callers can
// surface the fallback instead of silently accepting it.
func NormalizeCountry(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if len(value) == 2 && isAlpha(value) {
		return strings.ToUpper(value), true
	}
	if code, ok := countryNames[strings.ToLower(value)]; ok {
		return code, true
	}
	return FallbackCountryCode, false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

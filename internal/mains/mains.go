// Package mains resolves the local electrical mains frequency so the hum
// notch can be centered on 50Hz or 60Hz without asking the user.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// HumFrequency returns the local mains frequency in Hz, resolved from the
// system timezone. Ambiguous or undetectable locales fall back to 50Hz.
func HumFrequency() float64 {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50
	}
	return HumFrequencyForTimezone(timezone)
}

// HumFrequencyForTimezone maps an IANA timezone to its mains frequency.
func HumFrequencyForTimezone(timezone string) float64 {
	// UTC and the Etc/ zones carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50
	}
	return humFrequencyForCountry(country)
}

// ParseOverride interprets the hum-removal setting from configuration:
// "auto" resolves via the timezone, "off" disables the notch (returns 0),
// and "50" or "60" force a frequency. Anything else behaves like "auto".
func ParseOverride(setting string) float64 {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "off", "none", "disabled":
		return 0
	case "50":
		return 50
	case "60":
		return 60
	default:
		return HumFrequency()
	}
}

func humFrequencyForCountry(country string) float64 {
	// Japan runs both grids; the Tokyo region's 50Hz is the more common.
	if country == "Japan" {
		return 50
	}
	if hz60Countries[country] {
		return 60
	}
	return 50
}

// hz60Countries lists countries using 60Hz mains power.
// All other countries use 50Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (most of the continent is 50Hz)
	"Brazil":    true, // both grids exist; 60Hz predominates
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}

package tile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DMSToDecimal converts a degrees/minutes/seconds coordinate to decimal
// degrees. Southern latitudes and western longitudes ("S", "W") come out
// negative.
func DMSToDecimal(degrees, minutes, seconds float64, hemisphere string) float64 {
	decimal := degrees + minutes/60. + seconds/3600.
	switch strings.ToUpper(hemisphere) {
	case "S", "W":
		decimal = -decimal
	}
	return decimal
}

var dmsRegexp = regexp.MustCompile(`^(-?\d+)°\s*(\d+)'\s*([\d.]+)"?\s*([NSEWnsew])?$`)

// ParseDMS parses a coordinate given either as decimal degrees ("-77.5415")
// or in degree/minute/second notation as reported by mapping tools
// (`77°32'29.37"W`).
func ParseDMS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if decimal, err := strconv.ParseFloat(s, 64); err == nil {
		return decimal, nil
	}
	m := dmsRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("cannot parse coordinate %q", s)
	}
	degrees, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse degrees in %q", s)
	}
	minutes, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse minutes in %q", s)
	}
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse seconds in %q", s)
	}
	return DMSToDecimal(degrees, minutes, seconds, m[4]), nil
}

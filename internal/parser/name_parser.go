package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/lotuslake_go/internal/lake"
)

var (
	nonKeyChars   = regexp.MustCompile(`[0-9,. ]`)
	nonValueChars = regexp.MustCompile(`[a-zA-Z]`)
)

// ParseSimulationName turns a run directory name such as "d1.5_g0.2" into
// its parameters, {"d": 1.5, "g": 0.2}. Each underscore separated token is
// expected to be a letter key followed by a number; a repeated key keeps the
// last value. Only digits, commas, spaces and periods are dropped from the
// key, so a sign stays with it ("a-0.5" has key "a-").
func ParseSimulationName(name string) (map[string]float64, error) {
	params := make(map[string]float64)
	for _, token := range strings.Split(name, "_") {
		key := nonKeyChars.ReplaceAllString(token, "")
		raw := strings.TrimSpace(nonValueChars.ReplaceAllString(token, ""))
		if raw == "" {
			return nil, lake.NewParseError(fmt.Sprintf("token %q of %q has no numeric value", token, name), nil).
				WithContext("name", name)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, lake.NewParseError(fmt.Sprintf("token %q of %q", token, name), err).
				WithContext("name", name)
		}
		params[key] = value
	}
	return params, nil
}

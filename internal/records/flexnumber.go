package records

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexNumber holds a numeric field as received, whether the source sent a
// JSON number or a quoted string. Empty means the field was absent or null.
type FlexNumber string

// UnmarshalJSON accepts numbers, strings, and null.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*n = ""
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = FlexNumber(strings.TrimSpace(str))
		return nil
	}

	*n = FlexNumber(s)
	return nil
}

// MarshalJSON emits the raw value as a string, preserving what was received.
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

// IsEmpty reports whether no value was supplied.
func (n FlexNumber) IsEmpty() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Float parses the value. The boolean result is false when the value is
// present but not a valid number.
func (n FlexNumber) Float() (*float64, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return nil, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

// String returns the raw received value.
func (n FlexNumber) String() string {
	return string(n)
}

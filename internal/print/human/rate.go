package human

import (
	"encoding"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Rate represents a count of events per second.
//
// The type supports parsing values like:
//
//	200/s
//	1.5K/s
//	10 / minute
//
// A value without a unit is per second.
type Rate float64

func ParseRate(s string) (Rate, error) {
	text, unit, _ := strings.Cut(s, "/")
	unit = strings.TrimSpace(unit)

	value, suffix := parseUnit(text)
	scale := 1.0
	switch {
	case suffix == "":
	case match(suffix, "K"):
		scale = 1e3
	case match(suffix, "M"):
		scale = 1e6
	default:
		return 0, fmt.Errorf("malformed rate representation: %q", s)
	}
	count, err := strconv.ParseFloat(value, 64)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("malformed rate representation: %q", s)
	}

	var per time.Duration
	switch {
	case unit == "ms":
		per = time.Millisecond
	case unit == "", match(unit, "second"):
		per = time.Second
	case match(unit, "minute"):
		per = time.Minute
	case match(unit, "hour"):
		per = time.Hour
	default:
		return 0, fmt.Errorf("malformed unit representation: %q", s)
	}
	return Rate(count * scale * float64(time.Second) / float64(per)), nil
}

// Interval returns the time between two events at rate r, or zero when the
// rate is not limited.
func (r Rate) Interval() time.Duration {
	if r <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(r))
}

func (r Rate) String() string {
	return ftoa(float64(r), 1) + "/s"
}

func (r *Rate) Set(s string) error {
	p, err := ParseRate(s)
	if err != nil {
		return err
	}
	*r = p
	return nil
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(r))
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, (*float64)(r))
}

func (r Rate) MarshalYAML() (any, error) {
	return r.String(), nil
}

func (r *Rate) UnmarshalYAML(y *yaml.Node) error {
	var s string
	if err := y.Decode(&s); err != nil {
		return err
	}
	return r.Set(s)
}

func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rate) UnmarshalText(b []byte) error {
	return r.Set(string(b))
}

var (
	_ fmt.Stringer = Rate(0)

	_ json.Marshaler   = Rate(0)
	_ json.Unmarshaler = (*Rate)(nil)

	_ yaml.Marshaler   = Rate(0)
	_ yaml.Unmarshaler = (*Rate)(nil)

	_ encoding.TextMarshaler   = Rate(0)
	_ encoding.TextUnmarshaler = (*Rate)(nil)

	_ flag.Value = (*Rate)(nil)
)

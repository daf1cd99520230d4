package failsafe

import (
	"fmt"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// maxDurationSeconds bounds second counts to what time.Duration holds.
const maxDurationSeconds = math.MaxInt64 / float64(time.Second)

// Duration is a delay in configuration files. It accepts a number of
// seconds (1, 0.25) or a Go duration string ("1s", "250ms").
type Duration time.Duration

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON encodes d as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck // string encoding cannot fail
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a number of seconds or a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("delay: %w", err)
		}

		return d.parse(s)
	}

	return d.parseSeconds(string(data))
}

// UnmarshalYAML decodes a number of seconds or a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("delay: line %d: expected a scalar", node.Line)
	}

	switch node.Tag {
	case "!!int", "!!float":
		return d.parseSeconds(node.Value)
	default:
		return d.parse(node.Value)
	}
}

func (d *Duration) parse(s string) error {
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}

	return d.parseSeconds(s)
}

func (d *Duration) parseSeconds(s string) error {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.Abs(secs) >= maxDurationSeconds {
		return fmt.Errorf("delay: invalid duration %q", s)
	}

	*d = Duration(secs * float64(time.Second))

	return nil
}

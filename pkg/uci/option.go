package uci

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Option is an engine option advertised during the handshake via
// "option name <NAME> type <T> default <V> [min <A>] [max <B>]" lines.
type Option interface {
	// OptionName returns the advertised option name.
	OptionName() string
}

// CheckOption is a boolean engine option.
type CheckOption struct {
	Name    string
	Default bool
}

func (o CheckOption) OptionName() string {
	return o.Name
}

func (o CheckOption) String() string {
	return fmt.Sprintf("%v=%v (check)", o.Name, o.Default)
}

// SpinOption is an integer engine option, optionally bounded.
type SpinOption struct {
	Name     string
	Default  int
	Min, Max lang.Optional[int]
}

func (o SpinOption) OptionName() string {
	return o.Name
}

func (o SpinOption) String() string {
	return fmt.Sprintf("%v=%v (spin)", o.Name, o.Default)
}

// ParseOption parses an option line. It returns false for lines that do not
// declare an option, are missing name, type or default, or carry a type other
// than check or spin.
func ParseOption(line string) (Option, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "option" {
		return nil, false
	}

	// Option names may contain spaces, so tokens accumulate under the last
	// keyword seen.

	var name []string
	values := map[string]string{}
	key := ""
	for _, f := range fields[1:] {
		switch f {
		case "name", "type", "default", "min", "max", "var":
			key = f
		default:
			if key == "name" {
				name = append(name, f)
			} else if key != "" {
				values[key] = f
			}
		}
	}

	if len(name) == 0 {
		return nil, false
	}
	def, ok := values["default"]
	if !ok {
		return nil, false
	}

	switch values["type"] {
	case "check":
		b, err := strconv.ParseBool(def)
		if err != nil {
			return nil, false
		}
		return CheckOption{Name: strings.Join(name, " "), Default: b}, true

	case "spin":
		n, err := strconv.Atoi(def)
		if err != nil {
			return nil, false
		}
		ret := SpinOption{Name: strings.Join(name, " "), Default: n}
		if v, err := strconv.Atoi(values["min"]); err == nil {
			ret.Min = lang.Some(v)
		}
		if v, err := strconv.Atoi(values["max"]); err == nil {
			ret.Max = lang.Some(v)
		}
		return ret, true

	default:
		return nil, false
	}
}

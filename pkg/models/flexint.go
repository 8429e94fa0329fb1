package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexInt is an integer that also accepts a numeric string, since form
// inputs often post numbers as text.
type FlexInt int

// Int returns the value as an int.
func (n FlexInt) Int() int { return int(n) }

// IntOr returns *n, or def when n is nil.
func IntOr(n *FlexInt, def int) int {
	if n == nil {
		return def
	}
	return int(*n)
}

func parseFlex(s string) (FlexInt, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return FlexInt(v), nil
}

// UnmarshalJSON accepts 4, "4" and " 4 ".
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseFlex(s)
		if err != nil {
			return err
		}
		*n = v
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%s is not an integer", data)
	}
	*n = FlexInt(v)
	return nil
}

// UnmarshalYAML accepts scalars with or without quotes.
func (n *FlexInt) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer", value.Line)
	}
	v, err := parseFlex(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*n = v
	return nil
}

package intake

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rangePattern  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[~\-]\s*(\d+(?:\.\d+)?)$`)
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParsePrice reads a price out of loosely formatted producer output. It
// accepts plain numbers, thousands separators ("1,700"), a trailing currency
// marker ("1700원") and ranges ("1700~1800" or "1700-1800", resolved to the
// midpoint). Anything without a usable number is an error.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "원")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty price value")
	}

	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return v, nil
	}

	if m := rangePattern.FindStringSubmatch(cleaned); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return (lo + hi) / 2, nil
	}

	if m := numberPattern.FindString(cleaned); m != "" {
		return strconv.ParseFloat(m, 64)
	}
	return 0, fmt.Errorf("no numeric price in %q", s)
}

// FlexPrice unmarshals a JSON price that may arrive as a number or as one of
// the loose string forms ParsePrice accepts.
type FlexPrice float64

func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = FlexPrice(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price is neither number nor string: %s", data)
	}
	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = FlexPrice(v)
	return nil
}

// FlexInt unmarshals a JSON integer that may arrive as a number or a numeric
// string.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*i = FlexInt(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*i = FlexInt(int(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*i = FlexInt(v)
	return nil
}

// ExtractJSON strips markdown code fences producers sometimes wrap around
// their JSON payloads and returns the inner document.
func ExtractJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return []byte(s)
}

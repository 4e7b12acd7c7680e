package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

// toDuration accepts Go duration strings ("30s") or a number of seconds.
func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return d, nil
	case string:
		if d == "" {
			return 0, nil
		}
		if secs, err := strconv.Atoi(d); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(d)
	case int, int64, float64:
		return time.Duration(toInt(d)) * time.Second, nil
	}
	return 0, fmt.Errorf("unsupported duration %v", v)
}

func toStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str := toString(item); str != "" {
				out = append(out, str)
			}
		}
		return out
	case string:
		// Environment overrides arrive as one comma separated string.
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

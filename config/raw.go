package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var (
	durationExpr = regexp.MustCompile(`^` +
		`(?:(?P<week>[0-9]+)[wW])?\s*` +
		`(?:(?P<day>[0-9]+)[dD])?\s*` +
		`(?:(?P<hour>[0-9]+)h)?\s*` +
		`(?:(?P<minute>[0-9]+)m)?\s*` +
		`(?:(?P<second>[0-9]+)s)?$`)
	durationUnits = []time.Duration{Week, Day, time.Hour, time.Minute, time.Second}

	interpolationExpr = regexp.MustCompile(`__\$\{(\w+)\}__`)
)

// Raw is a decoded YAML mapping with typed accessors.
type Raw map[string]interface{}

// ParseFromString Provide a YAML string and unmarshal it
func ParseFromString(content string) (Raw, error) {
	return Parse(strings.NewReader(content))
}

func Parse(reader io.Reader) (Raw, error) {
	var out map[string]interface{}
	if err := yaml.NewDecoder(reader).Decode(&out); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

// Sub returns the mapping below key, or nil if key is missing or not a mapping.
func (c Raw) Sub(key string) Raw {
	switch v := c[key].(type) {
	case map[string]interface{}:
		return v
	case map[interface{}]interface{}:
		sub := make(Raw, len(v))
		for k, elem := range v {
			if s, ok := k.(string); ok {
				sub[s] = elem
			}
		}
		return sub
	}
	return nil
}

func (c Raw) Has(key string) bool {
	_, exists := c[key]
	return exists
}

func (c Raw) String(key string) string {
	return interpolate(asString(c[key]))
}

// StringOr returns the value of key, or fallback if the key is missing or empty.
func (c Raw) StringOr(key string, fallback string) string {
	if s := c.String(key); s != "" {
		return s
	}
	return fallback
}

func (c Raw) Bool(key string) bool {
	b, err := strconv.ParseBool(c.String(key))
	return err == nil && b
}

func (c Raw) Int64(key string) int64 {
	switch v := c[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	}

	i, err := strconv.ParseInt(c.String(key), 10, 64)
	if err != nil {
		return 0
	}
	return i
}

// Bytes reads a size like "4MB", "512 K" or a plain number of bytes.
func (c Raw) Bytes(key string) uint64 {
	s := strings.ToUpper(strings.ReplaceAll(c.String(key), " ", ""))
	if s == "" {
		return 0
	}

	if strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		bytes, err := bytefmt.ToBytes(s)
		if err == nil {
			return bytes
		}
	}

	parsed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// Duration reads a duration like "1w 2d 3h 4m 5s"; a plain number counts seconds.
func (c Raw) Duration(key string) time.Duration {
	s := strings.TrimSpace(c.String(key))
	if s == "" {
		return 0
	}

	if seconds, err := strconv.ParseUint(s, 10, 63); err == nil {
		return time.Duration(seconds) * time.Second
	}

	match := durationExpr.FindStringSubmatch(s)
	if match == nil {
		return 0
	}

	duration := time.Duration(0)
	// match[0] is the match for the whole regex
	for i, unit := range durationUnits {
		if n, err := strconv.ParseUint(match[i+1], 10, 63); err == nil {
			duration += unit * time.Duration(n)
		}
	}

	return duration
}

func asString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", val)
}

// interpolate replaces every __${NAME}__ marker with the environment variable NAME.
func interpolate(s string) string {
	return interpolationExpr.ReplaceAllStringFunc(s, func(marker string) string {
		return os.Getenv(interpolationExpr.FindStringSubmatch(marker)[1])
	})
}

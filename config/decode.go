package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var durationType = reflect.TypeOf(time.Duration(0))

// DurationHook decodes time.Duration fields from integers, read as seconds, and from strings
// holding either integer seconds or a Go duration ("1m30s"). Values that already are durations,
// as produced by duration flags, pass through unchanged. Negative durations are rejected.
func DurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}

		var d time.Duration
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			d = time.Duration(reflect.ValueOf(data).Int()) * time.Second
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			d = time.Duration(reflect.ValueOf(data).Uint()) * time.Second
		case reflect.String:
			parsed, err := parseDuration(reflect.ValueOf(data).String())
			if err != nil {
				return nil, err
			}
			d = parsed
		default:
			return nil, fmt.Errorf("cannot decode %s into a duration, expected integer seconds or a duration string", from)
		}

		if d < 0 {
			return nil, fmt.Errorf("duration must not be negative, got %s", d)
		}
		return d, nil
	}
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// decoderOptions configures viper's decoder with the hooks used for every config section.
func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		DurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

package metadata

import (
	"fmt"
	"strconv"
	"time"
)

// customTimeLayouts are tried in order when parsing date and time values out
// of the custom-field side table, which stores everything as text.
var customTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

// Convert coerces a raw custom-column value through the column's declared
// storage type. Values arrive from the side table as driver-dependent
// representations (usually text); parsing is locale-invariant. Types outside
// the convertible set yield ErrUnsupportedConversion.
func (c *ColumnMetadata) Convert(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch c.ColumnType {
	case TypeBoolean:
		return parseBool(rawString(value))
	case TypeByte:
		n, err := strconv.ParseUint(rawString(value), 10, 8)
		if err != nil {
			return nil, err
		}
		return byte(n), nil
	case TypeInt16:
		n, err := strconv.ParseInt(rawString(value), 10, 16)
		if err != nil {
			return nil, err
		}
		return int16(n), nil
	case TypeInt32:
		n, err := strconv.ParseInt(rawString(value), 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case TypeInt64:
		return strconv.ParseInt(rawString(value), 10, 64)
	case TypeSingle:
		f, err := strconv.ParseFloat(rawString(value), 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case TypeDouble, TypeDecimal, TypeMoney:
		return strconv.ParseFloat(rawString(value), 64)
	case TypeDate, TypeDateTime, TypeTime:
		return parseTime(value)
	case TypeString:
		return rawString(value), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConversion, c.ColumnType)
	}
}

// parseBool accepts integer text first, then invariant boolean text.
func parseBool(s string) (bool, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0, nil
	}
	return strconv.ParseBool(s)
}

func parseTime(value any) (time.Time, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	s := rawString(value)
	var lastErr error
	for _, layout := range customTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func rawString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

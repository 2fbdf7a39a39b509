package sqlstore

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// dateColumn scans a DATE or TEXT column into a civil.Date.
type dateColumn struct{ d *civil.Date }

func (c dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c.d = civil.DateOf(v)
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	case nil:
		*c.d = civil.Date{}
		return nil
	}
	return fmt.Errorf("scan date: unsupported type %T", src)
}

func (c dateColumn) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*c.d = d
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// timeColumn scans a timestamp stored natively or as text.
type timeColumn struct{ t *time.Time }

func (c timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c.t = v
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	case nil:
		*c.t = time.Time{}
		return nil
	}
	return fmt.Errorf("scan time: unsupported type %T", src)
}

func (c timeColumn) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*c.t = t
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognised timestamp %q", s)
}

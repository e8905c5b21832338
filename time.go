package bimrsid

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Time exists to facilitate time parsing from the index Metadata table, which
// stores unixtime but may come back as text depending on the driver. Derived
// from https://github.com/mattn/go-sqlite3/issues/190#issuecomment-343341834f
type Time time.Time

func (t *Time) Scan(v interface{}) error {
	switch which := v.(type) {
	case int64:
		*t = Time(time.Unix(which, 0))
		return nil
	case int:
		*t = Time(time.Unix(int64(which), 0))
		return nil
	case nil:
		*t = Time(time.Time{})
		return nil
	case []byte:
		return t.parse(string(which))
	case string:
		return t.parse(which)
	}

	return fmt.Errorf("No appropriate type could be found to decode %v", v)
}

func (t *Time) parse(s string) error {
	vt, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return err
	}
	*t = Time(vt)

	return nil
}

// Value stores the time as unixtime; the zero time is stored as 0.
func (t Time) Value() (driver.Value, error) {
	if time.Time(t).IsZero() {
		return int64(0), nil
	}

	return time.Time(t).Unix(), nil
}

func (t Time) String() string {
	if time.Time(t).IsZero() || time.Time(t).Unix() == 0 {
		return "unknown"
	}

	return time.Time(t).UTC().Format(time.RFC3339)
}

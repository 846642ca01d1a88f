package fat

import "time"

// DateTime is a FAT on-disk date/time pair decoded into its components.
// Seconds have two-second resolution; CreateTimeTenth (stored
// separately on a short entry) supplies sub-second precision for the
// creation timestamp only.
type DateTime struct {
	Year, Month, Day       int
	Hour, Minute, Second   int
}

// decodeDateTime unpacks FAT date/time fields per spec.md §3.5:
// date = (year-1980)<<9 | month<<5 | day, time = hour<<11 | minute<<5 | (second/2).
func decodeDateTime(date, clock uint16) DateTime {
	return DateTime{
		Year:   1980 + int(date>>9),
		Month:  int((date >> 5) & 0xF),
		Day:    int(date & 0x1F),
		Hour:   int(clock >> 11),
		Minute: int((clock >> 5) & 0x3F),
		Second: int(clock&0x1F) * 2,
	}
}

func encodeDateTime(dt DateTime) (date, clock uint16) {
	y := dt.Year - 1980
	if y < 0 {
		y = 0
	}
	date = uint16(y)<<9 | uint16(dt.Month)<<5 | uint16(dt.Day)
	clock = uint16(dt.Hour)<<11 | uint16(dt.Minute)<<5 | uint16(dt.Second/2)
	return date, clock
}

// Time converts dt to a time.Time in the given location (FAT timestamps
// carry no timezone information).
func (dt DateTime) Time(loc *time.Location) time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, loc)
}

func newDateTime(t time.Time) DateTime {
	return DateTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

package normalize

import (
	"strconv"
	"time"
)

// Формат created_at:
//
//	Wed Jan 22 23:19:19 +0000 2014
//	012345678901234567890123456789
const timestampLen = 30

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
	"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
	"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// ParseCreatedAt разбирает created_at по фиксированным позициям и возвращает момент в UTC.
// День недели игнорируется.
func ParseCreatedAt(s string) (time.Time, error) {
	fail := func(reason string) (time.Time, error) {
		return time.Time{}, &TimestampFormatError{Value: s, Reason: reason}
	}

	if len(s) != timestampLen {
		return fail("unexpected length " + strconv.Itoa(len(s)))
	}
	for _, i := range []int{3, 7, 10, 19, 25} {
		if s[i] != ' ' {
			return fail("expected space at offset " + strconv.Itoa(i))
		}
	}
	if s[13] != ':' || s[16] != ':' {
		return fail("expected hh:mm:ss")
	}

	month, ok := months[s[4:7]]
	if !ok {
		return fail("unknown month " + strconv.Quote(s[4:7]))
	}

	day, err1 := digits(s[8:10])
	hour, err2 := digits(s[11:13])
	minute, err3 := digits(s[14:16])
	second, err4 := digits(s[17:19])
	year, err5 := digits(s[26:30])
	offH, err6 := digits(s[21:23])
	offM, err7 := digits(s[23:25])
	for _, err := range []error{err1, err2, err3, err4, err5, err6, err7} {
		if err != nil {
			return fail("non-numeric field")
		}
	}

	sign := 1
	switch s[20] {
	case '+':
	case '-':
		sign = -1
	default:
		return fail("expected numeric zone offset")
	}

	if day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 || offM > 59 {
		return fail("field out of range")
	}

	zone := time.FixedZone("", sign*(offH*3600+offM*60))
	t := time.Date(year, month, day, hour, minute, second, 0, zone)
	if t.Day() != day {
		return fail("day out of range for month")
	}
	return t.UTC(), nil
}

func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

package enc

import (
	"math"
	"time"
)

// unsetISO8601 is emitted for timestamps that decode to the zero/unset
// sentinel of their native encoding.
const unsetISO8601 = "1970-01-01T00:00:00.000Z"

const isoLayout = "2006-01-02T15:04:05.000Z"

// ToISO8601 renders t as ISO-8601 UTC with millisecond precision, the single
// textual form every Artemis record is emitted in regardless of the on-disk
// encoding it came from.
func ToISO8601(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// filetimeToUnixEpochSeconds is the number of seconds between the FILETIME
// epoch (1601-01-01) and the UNIX epoch (1970-01-01). Every FILETIME-family
// conversion below goes through time.Unix's (seconds, nanoseconds) pair
// rather than a single time.Duration: a 100-ns tick count since 1601 for a
// present-day timestamp needs on the order of 1.3e19 nanoseconds, which
// overflows time.Duration's int64 range (+/-292 years) long before it
// overflows an int64 second count.
const filetimeToUnixEpochSeconds int64 = 11644473600

// FILETIMEToISO8601 converts a Windows FILETIME (100-ns intervals since
// 1601-01-01 UTC) to ISO-8601. A zero value maps to the native unset
// sentinel rather than 1601.
func FILETIMEToISO8601(ft uint64) string {
	if ft == 0 {
		return unsetISO8601
	}
	sec := int64(ft/1e7) - filetimeToUnixEpochSeconds
	nsec := int64(ft%1e7) * 100
	return ToISO8601(time.Unix(sec, nsec))
}

// WebKitToISO8601 converts a WebKit timestamp (microseconds since
// 1601-01-01 UTC) to ISO-8601.
func WebKitToISO8601(us int64) string {
	if us == 0 {
		return unsetISO8601
	}
	sec := us/1e6 - filetimeToUnixEpochSeconds
	nsec := (us % 1e6) * 1000
	return ToISO8601(time.Unix(sec, nsec))
}

// cocoaEpoch is 2001-01-01 00:00:00 UTC, the origin of Apple's Cocoa/Core
// Data reference date.
var cocoaEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// CocoaToISO8601 converts a Cocoa reference timestamp (seconds, possibly
// fractional, since 2001-01-01 UTC) to ISO-8601.
func CocoaToISO8601(seconds float64) string {
	if seconds == 0 {
		return unsetISO8601
	}
	ns := time.Duration(seconds * float64(time.Second))
	return ToISO8601(cocoaEpoch.Add(ns))
}

// oleAutomationEpoch is 1899-12-30 00:00:00 UTC.
var oleAutomationEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// OLEAutomationToISO8601 converts an OLE automation date (days, possibly
// fractional, since 1899-12-30 UTC) to ISO-8601.
func OLEAutomationToISO8601(days float64) string {
	if days == 0 {
		return unsetISO8601
	}
	whole, frac := math.Modf(days)
	d := time.Duration(whole) * 24 * time.Hour
	d += time.Duration(frac * 24 * float64(time.Hour))
	return ToISO8601(oleAutomationEpoch.Add(d))
}

// UnixSecondsToISO8601 converts a UNIX epoch second count to ISO-8601.
func UnixSecondsToISO8601(sec int64) string {
	if sec == 0 {
		return unsetISO8601
	}
	return ToISO8601(time.Unix(sec, 0))
}

// UnixMicrosToISO8601 converts a UNIX epoch microsecond count (used by
// SystemD Journal entries and Outlook) to ISO-8601.
func UnixMicrosToISO8601(us int64) string {
	if us == 0 {
		return unsetISO8601
	}
	return ToISO8601(time.UnixMicro(us))
}

// UnsetISO8601 returns the canonical sentinel emitted for zeroed or unknown
// timestamps.
func UnsetISO8601() string { return unsetISO8601 }

// DOSDateTimeToISO8601 converts an expanded MS-DOS date/time field (2-second
// resolution, used by shell-item extension blocks and FAT directory
// entries) to ISO-8601. An invalid calendar date still round-trips through
// time.Date, which normalises overflowing fields rather than erroring -
// matching every other conversion here in never panicking on bad input.
func DOSDateTimeToISO8601(year, month, day, hour, min, sec int) string {
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return ToISO8601(t)
}

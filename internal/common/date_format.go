package common

import "time"

// FileTimestamp is the layout used in exported file names
const FileTimestamp = "20060102_150405"

// FormatFileTimestamp formats t for use in a file name
func FormatFileTimestamp(t time.Time) string {
	return t.Format(FileTimestamp)
}

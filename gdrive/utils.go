package gdrive

import (
	"log"
	"time"
)

// ParseTime gets a RFC 3339 date-time string and returns it as unix time.
// Invalid input returns a date 150 years in the past.
// input example: 2018-08-03T12:03:30.407Z
func ParseTime(s string) int64 {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.Printf("ERROR: %s/ParseTime: can't parse time string '%s': %v", packageName, s, err)
		return time.Now().Unix() - 4730000000 // -150 years
	}
	return t.Unix()
}

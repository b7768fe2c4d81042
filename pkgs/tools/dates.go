package tools

import (
	"fmt"
	"time"
)

// dayLayouts are the accepted date argument formats, most specific first.
var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

func parseDay(s string) (time.Time, error) {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
}

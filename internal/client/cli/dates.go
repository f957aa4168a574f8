package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	whencommon "github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(whencommon.All...)
	return w
}()

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04", time.RFC3339}

// parseDue accepts ISO dates as well as phrases like "next friday" or
// "in 3 days", relative to now. Empty input means no due date.
func parseDue(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return &t, nil
		}
	}

	r, err := dateParser.Parse(s, now)
	if err != nil {
		return nil, fmt.Errorf("cannot understand date %q: %w", s, err)
	}
	if r == nil {
		return nil, fmt.Errorf("cannot understand date %q", s)
	}
	t := r.Time
	return &t, nil
}

// ago renders t relative to now, e.g. "3 minutes ago".
func ago(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func percent(p float64) string {
	return fmt.Sprintf("%3.0f%%", p*100)
}

package insights

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDatePattern        = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	delimitedDatePattern  = regexp.MustCompile(`\d{4}[_.]\d{2}[_.]\d{2}`)
	usDatePattern         = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	monthDayYearPattern   = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{1,2}),\s+(\d{4})`)
	dayMonthYearPattern   = regexp.MustCompile(`(?i)(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})`)
)

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// extractDateFromTitle pulls a document date out of a title or filename
// and normalises it to YYYY-MM-DD. Returns "" when no date is found.
// Meeting notes routinely carry their date only in the filename, so this
// backstops models that fail to report document_date.
func extractDateFromTitle(title string) string {
	if title == "" {
		return ""
	}

	if m := isoDatePattern.FindString(title); m != "" {
		return m
	}
	if m := delimitedDatePattern.FindString(title); m != "" {
		m = strings.ReplaceAll(m, "_", "-")
		return strings.ReplaceAll(m, ".", "-")
	}
	if m := usDatePattern.FindStringSubmatch(title); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2]))
	}
	if m := monthDayYearPattern.FindStringSubmatch(title); m != nil {
		if num, ok := monthNumbers[strings.ToLower(m[1])]; ok {
			return fmt.Sprintf("%s-%s-%s", m[3], num, pad2(m[2]))
		}
	}
	if m := dayMonthYearPattern.FindStringSubmatch(title); m != nil {
		if num, ok := monthNumbers[strings.ToLower(m[2])]; ok {
			return fmt.Sprintf("%s-%s-%s", m[3], num, pad2(m[1]))
		}
	}
	return ""
}

// validDateString reports whether s is exactly a real YYYY-MM-DD date.
// Models occasionally return surrounding prose or impossible dates.
func validDateString(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func pad2(s string) string {
	if n, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return s
}

package oscar

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"transfermap-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// credit hours assumed when the table offers none or an unparsable cell
const defaultCreditHours = 3.0

var letterDigitBoundary = regexp.MustCompile(`([A-Za-z]+)(\d+)`)

// NormalizeCourseCode inserts a single space between a run of letters
// and the digits that follow: "CS1331" -> "CS 1331",
// "BIOS1107L" -> "BIOS 1107L". Codes without a letters-then-digits
// boundary pass through unchanged. Idempotent.
func NormalizeCourseCode(code string) string {
	return letterDigitBoundary.ReplaceAllString(strings.TrimSpace(code), "${1} ${2}")
}

// ParseEquivalencies recovers typed equivalency records from a results
// page. The column layout is not guaranteed, so columns are identified
// from the header row's text, with a positional midpoint split as the
// fallback. A page without a recognizable data table yields zero
// records; that is a data-quality condition, not an error.
func ParseEquivalencies(ctx context.Context, body []byte, subject string) ([]Equivalency, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	// the data table is the first one with actual rows whose header
	// mentions classes or titles; everything else is page layout
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		rows := t.Find("tr")
		if rows.Length() <= 2 {
			return true
		}
		header := strings.ToLower(rows.First().Text())
		if strings.Contains(header, "class") || strings.Contains(header, "title") {
			table = t
			return false
		}
		return true
	})
	if table == nil {
		slog.WarnContext(ctx, "could not find equivalency table", "subject", subject)
		return nil, nil
	}

	rows := table.Find("tr")
	var headers []string
	rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.ToLower(htmlutil.CleanText(cell.Text())))
	})

	cols := identifyColumns(headers)

	var records []Equivalency
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td, th")

		need := 0
		if cols.schoolClass > need {
			need = cols.schoolClass
		}
		if cols.homeClass > need {
			need = cols.homeClass
		}
		if cells.Length() < need+1 {
			return
		}

		cell := func(idx int) string {
			if idx < 0 || idx >= cells.Length() {
				return ""
			}
			return htmlutil.CleanText(cells.Eq(idx).Text())
		}

		schoolCode := cell(cols.schoolClass)
		homeCode := cell(cols.homeClass)
		// administrative placeholder, not a real equivalency
		if strings.Contains(homeCode, "ET DEPT") {
			return
		}
		if schoolCode == "" || homeCode == "" {
			return
		}

		schoolHours, homeHours := creditHours(cols.credits, cell)

		records = append(records, Equivalency{
			Subject:           subject,
			SchoolCourseCode:  schoolCode,
			SchoolCourseName:  cell(cols.schoolTitle),
			SchoolCreditHours: schoolHours,
			HomeCourseCode:    NormalizeCourseCode(homeCode),
			HomeCourseName:    cell(cols.homeTitle),
			HomeCreditHours:   homeHours,
		})
	})

	return records, nil
}

type columns struct {
	schoolClass int
	schoolTitle int
	homeClass   int
	homeTitle   int
	credits     []int
}

// identifyColumns assigns column roles by scanning header texts left to
// right: the first "class" header is the external course code, the first
// "title" its title, the next distinct "class"/"title" pair belongs to
// the home course, and every "credit hours" header is collected in
// order. When the scan cannot place both class columns, the header row
// is split at its midpoint, external to the left and home to the right.
func identifyColumns(headers []string) columns {
	cols := columns{schoolClass: -1, schoolTitle: -1, homeClass: -1, homeTitle: -1}

	for i, header := range headers {
		switch {
		case strings.Contains(header, "class") && cols.schoolClass == -1:
			cols.schoolClass = i
		case strings.Contains(header, "title") && cols.schoolTitle == -1:
			cols.schoolTitle = i
		case strings.Contains(header, "class") && cols.homeClass == -1 && i != cols.schoolClass:
			cols.homeClass = i
		case strings.Contains(header, "title") && cols.homeTitle == -1 && i != cols.schoolTitle:
			cols.homeTitle = i
		case strings.Contains(header, "credit") && strings.Contains(header, "hour"):
			cols.credits = append(cols.credits, i)
		}
	}

	if cols.schoolClass == -1 || cols.homeClass == -1 {
		mid := len(headers) / 2
		for i, header := range headers {
			switch {
			case strings.Contains(header, "class") && i < mid && cols.schoolClass == -1:
				cols.schoolClass = i
			case strings.Contains(header, "class") && i >= mid && cols.homeClass == -1:
				cols.homeClass = i
			case strings.Contains(header, "title") && i < mid && cols.schoolTitle == -1:
				cols.schoolTitle = i
			case strings.Contains(header, "title") && i >= mid && cols.homeTitle == -1:
				cols.homeTitle = i
			}
		}
	}

	return cols
}

// creditHours resolves the external and home credit hours from however
// many credit-hour columns the header offered: two or more means first
// external / last home, exactly one is the home hours reused as the
// external default, zero or an unparsable cell falls back to 3.0 for
// both.
func creditHours(credits []int, cell func(int) string) (float64, float64) {
	switch {
	case len(credits) >= 2:
		school, okSchool := parseHours(cell(credits[0]))
		home, okHome := parseHours(cell(credits[len(credits)-1]))
		if okSchool && okHome {
			return school, home
		}
	case len(credits) == 1:
		home, ok := parseHours(cell(credits[0]))
		if ok {
			return home, home
		}
	}
	return defaultCreditHours, defaultCreditHours
}

func parseHours(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

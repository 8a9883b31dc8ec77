package transfermap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"transfermap-backend/lib/scrapers/oscar"
)

// Snapshot is the per-school document written after a school's crawl
// completes: everything found for it in one run, in crawl order.
type Snapshot struct {
	School        string                `json:"school"`
	Semester      string                `json:"semester"`
	Level         string                `json:"level"`
	SubjectsCount int                   `json:"subjects_count"`
	Equivalencies []SnapshotEquivalency `json:"equivalencies"`
}

type SnapshotEquivalency struct {
	Subject           string  `json:"subject"`
	SchoolCourseCode  string  `json:"schoolCourseCode"`
	SchoolCourseName  string  `json:"schoolCourseName"`
	SchoolCreditHours float64 `json:"schoolCreditHours"`
	GtCourseCode      string  `json:"gtCourseCode"`
	GtCourseName      string  `json:"gtCourseName"`
	GtCreditHours     float64 `json:"gtCreditHours"`
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugCollapse = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a filesystem-safe key from a school name:
// "Abraham Baldwin Agricultural College" ->
// "abraham-baldwin-agricultural-college".
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// WriteSnapshot writes one school's snapshot document to
// <dir>/<slug>.json.
func WriteSnapshot(dir, school, semester, level string, equivalencies []oscar.Equivalency) error {
	subjects := map[string]bool{}
	records := make([]SnapshotEquivalency, len(equivalencies))
	for i, eq := range equivalencies {
		subjects[eq.Subject] = true
		records[i] = SnapshotEquivalency{
			Subject:           eq.Subject,
			SchoolCourseCode:  eq.SchoolCourseCode,
			SchoolCourseName:  eq.SchoolCourseName,
			SchoolCreditHours: eq.SchoolCreditHours,
			GtCourseCode:      eq.HomeCourseCode,
			GtCourseName:      eq.HomeCourseName,
			GtCreditHours:     eq.HomeCreditHours,
		}
	}

	contents, err := json.MarshalIndent(Snapshot{
		School:        school,
		Semester:      semester,
		Level:         level,
		SubjectsCount: len(subjects),
		Equivalencies: records,
	}, "", "  ")
	if err != nil {
		return err
	}

	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, Slugify(school)+".json"), contents, 0644)
}

// Package transfermap drives the crawl of a transfer equivalency
// workflow and persists what it finds: normalized rows in sqlite plus
// one JSON snapshot document per school.
package transfermap

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
	"transfermap-backend/lib/scrapers/oscar"
	"transfermap-backend/services/transfermap/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/transfermap")

type Config struct {
	// entry point of the equivalency workflow
	StartUrl string `json:"start_url"`
	// state selected in stage two, by visible option text
	State string `json:"state"`
	// academic level, by visible option text
	Level string `json:"level"`
	// term, by visible option text; also stored on every equivalency
	Semester string `json:"semester"`
	// outbound identification string
	UserAgent string `json:"user_agent"`

	RequestsPerMinute   int     `json:"requests_per_minute"`
	RetryMax            int     `json:"retry_max"`
	RetryBackoffSeconds float64 `json:"retry_backoff_seconds"`

	DatabasePath string `json:"database_path"`
	SnapshotDir  string `json:"snapshot_dir"`
	DebugDir     string `json:"debug_dir"`

	// optional school-name prefix filter, useful while testing
	SchoolNameFilter string `json:"school_name_filter"`
	// optional subject-code prefix filter
	SubjectPrefixFilter string `json:"subject_prefix_filter"`
}

func (c *Config) ApplyDefaults() {
	if c.StartUrl == "" {
		c.StartUrl = "https://oscar.gatech.edu/pls/bprod/wwsktrna.P_find_location"
	}
	if c.State == "" {
		c.State = "Georgia"
	}
	if c.Level == "" {
		c.Level = "Undergraduate"
	}
	if c.Semester == "" {
		c.Semester = "Fall 2025"
	}
	if c.UserAgent == "" {
		c.UserAgent = "TransferMapGT/0.1 (student project; contact: myemail@example.com)"
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = 8
	}
	if c.RetryMax == 0 {
		c.RetryMax = 3
	}
	if c.RetryBackoffSeconds == 0 {
		c.RetryBackoffSeconds = 2
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/transfermap.db"
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "data/schools"
	}
	if c.DebugDir == "" {
		c.DebugDir = "data/debug"
	}
}

func (c Config) ClientOptions() oscar.ClientOptions {
	return oscar.ClientOptions{
		UserAgent:         c.UserAgent,
		RequestsPerMinute: c.RequestsPerMinute,
		RetryMax:          c.RetryMax,
		RetryBackoff:      time.Duration(c.RetryBackoffSeconds * float64(time.Second)),
		DebugDir:          c.DebugDir,
	}
}

type Service struct {
	qry    *db.Queries
	client *oscar.Client
	config Config
}

func NewService(database *sql.DB, client *oscar.Client, config Config) Service {
	return Service{
		qry:    db.New(database),
		client: client,
		config: config,
	}
}

// Run executes the whole crawl: the three lead-in stages once, then
// every school sequentially, every subject within a school
// sequentially. A school or subject that fails structurally is skipped
// and logged; whatever completed before a failure stays durable.
func (s Service) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	slog.InfoContext(ctx, "starting crawl",
		"state", s.config.State,
		"level", s.config.Level,
		"semester", s.config.Semester,
	)

	stateUrl, err := s.client.ConfirmDomestic(ctx, s.config.StartUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "confirm domestic institution")
		return err
	}
	schoolsUrl, err := s.client.SelectState(ctx, stateUrl, s.config.State)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select state")
		return err
	}
	schools, err := s.client.ListSchools(ctx, schoolsUrl, s.config.SchoolNameFilter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list schools")
		return err
	}

	for i, school := range schools {
		slog.InfoContext(ctx, "processing school",
			"school", school.Name,
			"progress", i+1,
			"total", len(schools),
		)
		err := s.crawlSchool(ctx, schoolsUrl, school)
		if err != nil {
			slog.ErrorContext(ctx, "school failed, skipping",
				"school", school.Name,
				"err", err,
			)
			continue
		}
	}

	slog.InfoContext(ctx, "crawl finished", "schools", len(schools))
	return nil
}

func (s Service) crawlSchool(ctx context.Context, schoolsUrl string, school oscar.School) error {
	ctx, span := tracer.Start(ctx, "crawlSchool")
	defer span.End()
	span.SetAttributes(attribute.String("school", school.Name))

	subjectUrl, err := s.client.SelectSchool(ctx, schoolsUrl, school)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select school")
		return err
	}

	sp, err := s.client.DiscoverSubjects(
		ctx, subjectUrl,
		s.config.Level, s.config.Semester,
		s.config.SubjectPrefixFilter,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discover subjects")
		return err
	}
	slog.InfoContext(ctx, "found subjects",
		"school", school.Name,
		"count", len(sp.Subjects),
	)

	schoolId, err := s.qry.UpsertSchool(ctx, school.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert school")
		return err
	}

	var all []oscar.Equivalency
	for _, subject := range sp.Subjects {
		records, err := s.crawlSubject(ctx, sp, subject, schoolId)
		if err != nil {
			slog.ErrorContext(ctx, "subject failed, skipping",
				"school", school.Name,
				"subject", subject.Name,
				"err", err,
			)
			continue
		}
		if len(records) > 0 {
			slog.InfoContext(ctx, "found equivalencies",
				"school", school.Name,
				"subject", subject.Name,
				"count", len(records),
			)
		}
		all = append(all, records...)
	}

	if len(all) > 0 {
		err = WriteSnapshot(s.config.SnapshotDir, school.Name, s.config.Semester, s.config.Level, all)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write snapshot")
			return err
		}
	}

	slog.InfoContext(ctx, "completed school",
		"school", school.Name,
		"equivalencies", len(all),
	)
	return nil
}

func (s Service) crawlSubject(ctx context.Context, sp oscar.SubjectPage, subject oscar.Subject, schoolId int64) ([]oscar.Equivalency, error) {
	ctx, span := tracer.Start(ctx, "crawlSubject")
	defer span.End()
	span.SetAttributes(attribute.String("subject", subject.Name))

	body, err := s.client.SubmitSubject(ctx, sp, subject, s.config.Level, s.config.Semester)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit subject")
		return nil, err
	}

	records, err := oscar.ParseEquivalencies(ctx, body, subject.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse equivalencies")
		return nil, err
	}

	for _, record := range records {
		err := s.persist(ctx, schoolId, record)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist equivalency")
			return nil, err
		}
	}

	return records, nil
}

// persist fans one record out into the three entities it touches. Each
// upsert is idempotent on its natural key, so re-running a crawl only
// refreshes the semester on existing equivalency rows.
func (s Service) persist(ctx context.Context, schoolId int64, record oscar.Equivalency) error {
	homeCourseId, err := s.qry.UpsertHomeCourse(ctx, db.UpsertHomeCourseParams{
		Code:        record.HomeCourseCode,
		Title:       record.HomeCourseName,
		CreditHours: record.HomeCreditHours,
	})
	if err != nil {
		return err
	}

	err = s.qry.UpsertExternalCourse(ctx, db.UpsertExternalCourseParams{
		SchoolID:    schoolId,
		Code:        record.SchoolCourseCode,
		Title:       record.SchoolCourseName,
		CreditHours: record.SchoolCreditHours,
	})
	if err != nil {
		return err
	}

	return s.qry.UpsertEquivalency(ctx, db.UpsertEquivalencyParams{
		HomeCourseID:       homeCourseId,
		SchoolID:           schoolId,
		ExternalCourseCode: record.SchoolCourseCode,
		Semester:           s.config.Semester,
	})
}

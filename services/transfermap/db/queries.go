package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertSchool = `
INSERT INTO School (name) VALUES (?)
ON CONFLICT (name) DO NOTHING
`

const getSchoolId = `
SELECT id FROM School WHERE name = ?
`

// UpsertSchool inserts the school if absent and returns its id either
// way; re-running never creates a second row.
func (q *Queries) UpsertSchool(ctx context.Context, name string) (int64, error) {
	_, err := q.db.ExecContext(ctx, upsertSchool, name)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.db.QueryRowContext(ctx, getSchoolId, name).Scan(&id)
	return id, err
}

const upsertHomeCourse = `
INSERT INTO HomeCourse (code, title, creditHours) VALUES (?, ?, ?)
ON CONFLICT (code) DO NOTHING
`

const getHomeCourseId = `
SELECT id FROM HomeCourse WHERE code = ?
`

type UpsertHomeCourseParams struct {
	Code        string
	Title       string
	CreditHours float64
}

// UpsertHomeCourse inserts the course if absent and returns its id.
// Title and credit hours of an existing row stay as first seen.
func (q *Queries) UpsertHomeCourse(ctx context.Context, arg UpsertHomeCourseParams) (int64, error) {
	_, err := q.db.ExecContext(ctx, upsertHomeCourse, arg.Code, arg.Title, arg.CreditHours)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.db.QueryRowContext(ctx, getHomeCourseId, arg.Code).Scan(&id)
	return id, err
}

const upsertExternalCourse = `
INSERT INTO ExternalCourse (schoolId, code, title, creditHours) VALUES (?, ?, ?, ?)
ON CONFLICT (schoolId, code) DO NOTHING
`

type UpsertExternalCourseParams struct {
	SchoolID    int64
	Code        string
	Title       string
	CreditHours float64
}

func (q *Queries) UpsertExternalCourse(ctx context.Context, arg UpsertExternalCourseParams) error {
	_, err := q.db.ExecContext(ctx, upsertExternalCourse, arg.SchoolID, arg.Code, arg.Title, arg.CreditHours)
	return err
}

const upsertEquivalency = `
INSERT INTO Equivalency (homeCourseId, schoolId, externalCourseCode, semester) VALUES (?, ?, ?, ?)
ON CONFLICT (homeCourseId, schoolId, externalCourseCode)
DO UPDATE SET semester = excluded.semester
`

type UpsertEquivalencyParams struct {
	HomeCourseID       int64
	SchoolID           int64
	ExternalCourseCode string
	Semester           string
}

// UpsertEquivalency inserts the association or, when it already exists,
// refreshes only the semester; latest write wins there, everything else
// is append-only across runs.
func (q *Queries) UpsertEquivalency(ctx context.Context, arg UpsertEquivalencyParams) error {
	_, err := q.db.ExecContext(ctx, upsertEquivalency, arg.HomeCourseID, arg.SchoolID, arg.ExternalCourseCode, arg.Semester)
	return err
}

const countEquivalencies = `
SELECT COUNT(*) FROM Equivalency WHERE schoolId = ?
`

func (q *Queries) CountEquivalencies(ctx context.Context, schoolId int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countEquivalencies, schoolId).Scan(&count)
	return count, err
}

const getEquivalencySemester = `
SELECT semester FROM Equivalency
WHERE homeCourseId = ? AND schoolId = ? AND externalCourseCode = ?
`

type GetEquivalencySemesterParams struct {
	HomeCourseID       int64
	SchoolID           int64
	ExternalCourseCode string
}

func (q *Queries) GetEquivalencySemester(ctx context.Context, arg GetEquivalencySemesterParams) (string, error) {
	var semester string
	err := q.db.QueryRowContext(ctx, getEquivalencySemester, arg.HomeCourseID, arg.SchoolID, arg.ExternalCourseCode).Scan(&semester)
	return semester, err
}

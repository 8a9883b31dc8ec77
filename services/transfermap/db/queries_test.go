package db

import (
	"context"
	"testing"
	"transfermap-backend/lib/testutil"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestUpsertsAreIdempotent(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/transfermap/db",
		DbSchema: Schema,
	})
	defer cleanup()

	ctx := context.Background()
	qry := New(setup.DB)

	schoolId, err := qry.UpsertSchool(ctx, "Georgia State University")
	require.NoError(t, err)
	again, err := qry.UpsertSchool(ctx, "Georgia State University")
	require.NoError(t, err)
	require.Equal(t, schoolId, again)

	homeCourseId, err := qry.UpsertHomeCourse(ctx, UpsertHomeCourseParams{
		Code:        "BIOS 1107",
		Title:       "Biological Principles",
		CreditHours: 4,
	})
	require.NoError(t, err)

	// conflicting upsert keeps the first-seen title and credit hours
	again, err = qry.UpsertHomeCourse(ctx, UpsertHomeCourseParams{
		Code:        "BIOS 1107",
		Title:       "Different Title",
		CreditHours: 3,
	})
	require.NoError(t, err)
	require.Equal(t, homeCourseId, again)

	var title string
	var creditHours float64
	err = setup.DB.QueryRowContext(ctx,
		"SELECT title, creditHours FROM HomeCourse WHERE id = ?", homeCourseId,
	).Scan(&title, &creditHours)
	require.NoError(t, err)
	require.Equal(t, "Biological Principles", title)
	require.Equal(t, 4.0, creditHours)

	err = qry.UpsertExternalCourse(ctx, UpsertExternalCourseParams{
		SchoolID:    schoolId,
		Code:        "BIO 101",
		Title:       "Intro Biology",
		CreditHours: 4,
	})
	require.NoError(t, err)
	err = qry.UpsertExternalCourse(ctx, UpsertExternalCourseParams{
		SchoolID:    schoolId,
		Code:        "BIO 101",
		Title:       "Intro Biology",
		CreditHours: 4,
	})
	require.NoError(t, err)

	var external int64
	err = setup.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ExternalCourse WHERE schoolId = ?", schoolId,
	).Scan(&external)
	require.NoError(t, err)
	require.Equal(t, int64(1), external)
}

func TestUpsertEquivalencyRefreshesSemester(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/transfermap/db:semester",
		DbSchema: Schema,
	})
	defer cleanup()

	ctx := context.Background()
	qry := New(setup.DB)

	schoolId, err := qry.UpsertSchool(ctx, "Georgia State University")
	require.NoError(t, err)
	homeCourseId, err := qry.UpsertHomeCourse(ctx, UpsertHomeCourseParams{
		Code: "BIOS 1107",
	})
	require.NoError(t, err)

	err = qry.UpsertEquivalency(ctx, UpsertEquivalencyParams{
		HomeCourseID:       homeCourseId,
		SchoolID:           schoolId,
		ExternalCourseCode: "BIO 101",
		Semester:           "Fall 2025",
	})
	require.NoError(t, err)
	err = qry.UpsertEquivalency(ctx, UpsertEquivalencyParams{
		HomeCourseID:       homeCourseId,
		SchoolID:           schoolId,
		ExternalCourseCode: "BIO 101",
		Semester:           "Spring 2026",
	})
	require.NoError(t, err)

	count, err := qry.CountEquivalencies(ctx, schoolId)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	semester, err := qry.GetEquivalencySemester(ctx, GetEquivalencySemesterParams{
		HomeCourseID:       homeCourseId,
		SchoolID:           schoolId,
		ExternalCourseCode: "BIO 101",
	})
	require.NoError(t, err)
	require.Equal(t, "Spring 2026", semester)
}

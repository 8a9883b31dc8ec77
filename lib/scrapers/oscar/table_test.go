package oscar

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCourseCode(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"CS1331", "CS 1331"},
		{"BIOS1107L", "BIOS 1107L"},
		{"MATH 1550", "MATH 1550"},
		{"  CS1331  ", "CS 1331"},
		{"4XXX", "4XXX"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, NormalizeCourseCode(tc.in), "input %q", tc.in)
		// idempotent
		require.Equal(t, tc.expected, NormalizeCourseCode(NormalizeCourseCode(tc.in)))
	}
}

func resultsPage(rows string) []byte {
	return []byte(fmt.Sprintf(`
		<html><body>
		<table><tr><td>navigation</td></tr></table>
		<table>
		<tr><th>External Class</th><th>External Title</th><th>GT Class</th><th>GT Title</th><th>Credit Hours</th></tr>
		%s
		</table>
		</body></html>
	`, rows))
}

func TestParseEquivalencies(t *testing.T) {
	ctx := context.Background()

	records, err := ParseEquivalencies(ctx, resultsPage(`
		<tr><td>BIO 101</td><td>Intro Biology</td><td>BIOL 1107</td><td>Intro Biology GT</td><td>4</td></tr>
		<tr><td>BIO 102</td><td>Biology II</td><td>BIOS1107L</td><td>Biology Lab</td><td>1</td></tr>
	`), "BIOL")
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, Equivalency{
		Subject:           "BIOL",
		SchoolCourseCode:  "BIO 101",
		SchoolCourseName:  "Intro Biology",
		SchoolCreditHours: 4,
		HomeCourseCode:    "BIOL 1107",
		HomeCourseName:    "Intro Biology GT",
		HomeCreditHours:   4,
	}, records[0])
	// home codes are normalized
	require.Equal(t, "BIOS 1107L", records[1].HomeCourseCode)
}

func TestParseEquivalenciesSkipsRows(t *testing.T) {
	ctx := context.Background()

	records, err := ParseEquivalencies(ctx, resultsPage(`
		<tr><td>BIO 101</td><td>Intro Biology</td><td>ET DEPT XXXX</td><td>Dept Credit</td><td>3</td></tr>
		<tr><td></td><td>No External Code</td><td>BIOL 1107</td><td>Intro Biology</td><td>4</td></tr>
		<tr><td>BIO 103</td><td>Kept</td><td>BIOL 1108</td><td>Kept GT</td><td>3</td></tr>
	`), "BIOL")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "BIOL 1108", records[0].HomeCourseCode)
}

func TestParseEquivalenciesCreditHourVariants(t *testing.T) {
	ctx := context.Background()

	// two credit-hour columns: first is the external hours, last is the
	// home hours
	records, err := ParseEquivalencies(ctx, []byte(`
		<table>
		<tr><th>Class</th><th>Title</th><th>Credit Hours</th><th>Class</th><th>Title</th><th>Credit Hours</th></tr>
		<tr><td>BIO 101</td><td>Biology</td><td>5</td><td>BIOL 1107</td><td>Biology GT</td><td>4</td></tr>
		<tr><td>BIO 102</td><td>Biology II</td><td>bad</td><td>BIOL 1108</td><td>Biology II GT</td><td>4</td></tr>
		</table>
	`), "BIOL")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 5.0, records[0].SchoolCreditHours)
	require.Equal(t, 4.0, records[0].HomeCreditHours)
	// unparsable cell defaults both sides
	require.Equal(t, 3.0, records[1].SchoolCreditHours)
	require.Equal(t, 3.0, records[1].HomeCreditHours)

	// no credit-hour column at all
	records, err = ParseEquivalencies(ctx, []byte(`
		<table>
		<tr><th>Class</th><th>Title</th><th>Class</th><th>Title</th></tr>
		<tr><td>BIO 101</td><td>Biology</td><td>BIOL 1107</td><td>Biology GT</td></tr>
		<tr><td>BIO 102</td><td>Biology II</td><td>BIOL 1108</td><td>Biology II GT</td></tr>
		</table>
	`), "BIOL")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 3.0, records[0].SchoolCreditHours)
	require.Equal(t, 3.0, records[0].HomeCreditHours)
}

func TestParseEquivalenciesNoTable(t *testing.T) {
	ctx := context.Background()

	// no table whose header mentions classes or titles: zero records,
	// no error
	records, err := ParseEquivalencies(ctx, []byte(`
		<html><body>
		<table><tr><td>nav</td></tr><tr><td>bar</td></tr><tr><td>baz</td></tr></table>
		<p>No equivalencies found.</p>
		</body></html>
	`), "BIOL")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestParseEquivalenciesSingleClassColumn(t *testing.T) {
	ctx := context.Background()

	// a header with only one class column can never produce a home
	// course code, so every row is skipped rather than mis-assigned
	records, err := ParseEquivalencies(ctx, []byte(`
		<table>
		<tr><th>GT Class</th><th>GT Title</th><th>Credit Hours</th></tr>
		<tr><td>BIOL 1107</td><td>Biology</td><td>4</td></tr>
		<tr><td>BIOL 1108</td><td>Biology II</td><td>4</td></tr>
		</table>
	`), "BIOL")
	require.NoError(t, err)
	require.Empty(t, records)
}

package oscar

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func mustUrl(t *testing.T, raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestParseForm(t *testing.T) {
	doc := parseDoc(t, `
		<html><body>
		<form action="submit_here" method="post">
			<input type="hidden" name="sid" value="abc123">
			<input type="hidden" name="stage" value="2">
			<select name="state_sel">
				<option value="">Select a State</option>
				<option value="AL">Alabama</option>
				<option value="GA" selected>Georgia</option>
			</select>
			<select name="dummy">
				<option value="x">X</option>
				<option value="y">Y</option>
			</select>
			<input type="submit" name="B1" value="Get State Schools">
		</form>
		</body></html>
	`)

	form, err := ParseForm(doc, mustUrl(t, "https://example.com/pls/bprod/start"))
	require.NoError(t, err)

	require.Equal(t, "https://example.com/pls/bprod/submit_here", form.Action)
	require.Equal(t, map[string]string{"sid": "abc123", "stage": "2"}, form.Hidden)

	require.Len(t, form.Selects, 2)
	state := form.Selects[0]
	require.Equal(t, "state_sel", state.Name)
	// the placeholder option has an empty value and is excluded
	require.Equal(t, []Option{
		{Value: "AL", Text: "Alabama"},
		{Value: "GA", Text: "Georgia"},
	}, state.Options)
	// explicitly selected option wins
	require.Equal(t, "GA", state.Default)
	// no selected attribute falls back to the first option
	require.Equal(t, "x", form.Selects[1].Default)

	require.Equal(t, []Button{{Name: "B1", Value: "Get State Schools"}}, form.Buttons)
}

func TestParseFormNoForm(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>maintenance page</p></body></html>`)
	_, err := ParseForm(doc, mustUrl(t, "https://example.com/start"))
	require.True(t, errors.Is(err, ErrNoForm))
}

func TestParseFormExcludesEmptyTextOptions(t *testing.T) {
	doc := parseDoc(t, `
		<form action="/next">
		<select name="s">
			<option value="1">One</option>
			<option value="2"></option>
			<option value="">   </option>
			<option value="3">Three</option>
		</select>
		</form>
	`)
	form, err := ParseForm(doc, mustUrl(t, "https://example.com/"))
	require.NoError(t, err)
	require.Equal(t, []Option{
		{Value: "1", Text: "One"},
		{Value: "3", Text: "Three"},
	}, form.Selects[0].Options)
}

func TestBuildPost(t *testing.T) {
	doc := parseDoc(t, `
		<form action="/next">
		<input type="hidden" name="sid" value="abc">
		<select name="state_sel">
			<option value="AL">Alabama</option>
			<option value="GA">Georgia</option>
		</select>
		<select name="levl">
			<option value="U" selected>Undergraduate</option>
			<option value="G">Graduate</option>
		</select>
		</form>
	`)
	form, err := ParseForm(doc, mustUrl(t, "https://example.com/"))
	require.NoError(t, err)

	data := form.BuildPost(map[string]string{
		"state_sel": "GA",
		"B1":        "Get State Schools",
	})

	require.Equal(t, "abc", data.Get("sid"))
	require.Equal(t, "GA", data.Get("state_sel"))
	// untouched select keeps its default
	require.Equal(t, "U", data.Get("levl"))
	require.Equal(t, "Get State Schools", data.Get("B1"))
}

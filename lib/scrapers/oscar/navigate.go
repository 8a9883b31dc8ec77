package oscar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// The workflow is a linear six-stage sequence with no branching or
// backtracking. Each stage consumes the URL the previous stage produced
// and either emits the next URL or a structured list. Stages fail fast
// on structural surprises; the caller decides how much work to abandon.

// ConfirmDomestic answers the domestic-institution question on the
// start page by submitting its "Yes" button, producing the URL of the
// state selection page.
func (c *Client) ConfirmDomestic(ctx context.Context, startUrl string) (string, error) {
	ctx, span := tracer.Start(ctx, "ConfirmDomestic")
	defer span.End()

	p, err := c.getPage(ctx, startUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch start page")
		return "", err
	}
	form, err := c.formFromPage(p, "us_yes")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model start page form")
		return "", err
	}

	overrides := map[string]string{}
	if btn, ok := form.SubmitButton("yes"); ok && btn.Name != "" {
		overrides[btn.Name] = btn.Value
	}

	next, err := c.postForm(ctx, form.Action, form.BuildPost(overrides))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit confirmation")
		return "", err
	}
	return next.url.String(), nil
}

// SelectState picks the configured state by its visible option text,
// producing the URL of the school list page.
func (c *Client) SelectState(ctx context.Context, link, state string) (string, error) {
	ctx, span := tracer.Start(ctx, "SelectState")
	defer span.End()

	p, err := c.getPage(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch state page")
		return "", err
	}
	form, err := c.formFromPage(p, "state")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model state page form")
		return "", err
	}

	field, value, err := form.OptionByText(state)
	if err != nil {
		c.dump("state", p.body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve state option")
		return "", fmt.Errorf("state: %w", err)
	}

	overrides := map[string]string{field: value}
	if btn, ok := form.SubmitButton("state", "get"); ok && btn.Name != "" {
		overrides[btn.Name] = btn.Value
	}

	next, err := c.postForm(ctx, form.Action, form.BuildPost(overrides))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit state")
		return "", err
	}
	return next.url.String(), nil
}

// ListSchools enumerates the school select's options, optionally keeping
// only schools whose name starts with namePrefix (case-insensitive).
// Per-school submissions originate from the same link afterwards.
func (c *Client) ListSchools(ctx context.Context, link, namePrefix string) ([]School, error) {
	ctx, span := tracer.Start(ctx, "ListSchools")
	defer span.End()

	p, err := c.getPage(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch school list page")
		return nil, err
	}
	form, err := c.formFromPage(p, "schools")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model school list form")
		return nil, err
	}

	sel, ok := form.SchoolSelect()
	if !ok {
		c.dump("schools", p.body)
		span.SetStatus(codes.Error, "resolve school select")
		return nil, fmt.Errorf("schools: %w", ErrSelectNotFound)
	}

	var schools []School
	for _, opt := range sel.Options {
		schools = append(schools, School{Value: opt.Value, Name: opt.Text})
	}
	slog.InfoContext(ctx, "found schools", "count", len(schools))

	if namePrefix != "" {
		var filtered []School
		for _, school := range schools {
			if strings.HasPrefix(strings.ToLower(school.Name), strings.ToLower(namePrefix)) {
				filtered = append(filtered, school)
			}
		}
		slog.InfoContext(ctx, "filtered schools", "prefix", namePrefix, "count", len(filtered))
		schools = filtered
	}

	return schools, nil
}

// SelectSchool submits one school's form value, producing the URL of its
// subject page. The school select is re-resolved on every call; the page
// usually repeats identically across schools but nothing guarantees it.
func (c *Client) SelectSchool(ctx context.Context, link string, school School) (string, error) {
	ctx, span := tracer.Start(ctx, "SelectSchool")
	defer span.End()

	p, err := c.getPage(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch school list page")
		return "", err
	}
	form, err := c.formFromPage(p, "choose_school")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model school list form")
		return "", err
	}

	sel, ok := form.SchoolSelect()
	if !ok {
		c.dump("choose_school", p.body)
		span.SetStatus(codes.Error, "resolve school select")
		return "", fmt.Errorf("choose_school: %w", ErrSelectNotFound)
	}

	overrides := map[string]string{sel.Name: school.Value}
	if btn, ok := form.SubmitButton("school", "get"); ok && btn.Name != "" {
		overrides[btn.Name] = btn.Value
	}

	next, err := c.postForm(ctx, form.Action, form.BuildPost(overrides))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit school")
		return "", err
	}
	return next.url.String(), nil
}

// SubjectPage carries everything stage six needs to request one subject
// table: the URL to re-fetch, the subject list and the field names
// discovered for the subject, level and term selects.
type SubjectPage struct {
	Url          string
	Subjects     []Subject
	SubjectField string
	LevelField   string
	TermField    string
}

// DiscoverSubjects reads a school's subject page: the subject list comes
// from the largest select, level and term are resolved by their visible
// option text. subjectPrefix optionally keeps only subject codes with
// that prefix.
func (c *Client) DiscoverSubjects(ctx context.Context, link, level, term, subjectPrefix string) (SubjectPage, error) {
	ctx, span := tracer.Start(ctx, "DiscoverSubjects")
	defer span.End()

	p, err := c.getPage(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch subject page")
		return SubjectPage{}, err
	}
	form, err := c.formFromPage(p, "subjects")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model subject page form")
		return SubjectPage{}, err
	}

	sel, ok := form.LargestSelect()
	if !ok {
		c.dump("subjects", p.body)
		span.SetStatus(codes.Error, "resolve subject select")
		return SubjectPage{}, fmt.Errorf("subjects: %w", ErrSelectNotFound)
	}

	var subjects []Subject
	for _, opt := range sel.Options {
		subjects = append(subjects, Subject{Value: opt.Value, Name: opt.Text})
	}
	if subjectPrefix != "" {
		var filtered []Subject
		for _, subject := range subjects {
			if strings.HasPrefix(subject.Name, subjectPrefix) {
				filtered = append(filtered, subject)
			}
		}
		slog.InfoContext(ctx, "filtered subjects", "prefix", subjectPrefix, "count", len(filtered))
		subjects = filtered
	}

	levelField, _, err := form.OptionByText(level)
	if err != nil {
		c.dump("subjects", p.body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve level option")
		return SubjectPage{}, fmt.Errorf("level: %w", err)
	}
	termField, _, err := form.OptionByText(term)
	if err != nil {
		c.dump("subjects", p.body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve term option")
		return SubjectPage{}, fmt.Errorf("term: %w", err)
	}

	return SubjectPage{
		Url:          p.url.String(),
		Subjects:     subjects,
		SubjectField: sel.Name,
		LevelField:   levelField,
		TermField:    termField,
	}, nil
}

// SubmitSubject re-fetches the subject page and submits one subject
// together with the level and term, returning the raw results HTML. The
// level and term option values are re-read from the fresh page rather
// than cached, guarding against session drift between subjects.
func (c *Client) SubmitSubject(ctx context.Context, sp SubjectPage, subject Subject, level, term string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "SubmitSubject")
	defer span.End()

	p, err := c.getPage(ctx, sp.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch subject page")
		return nil, err
	}
	form, err := c.formFromPage(p, "subject_submit")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model subject page form")
		return nil, err
	}

	_, levelValue, err := form.OptionByText(level)
	if err != nil {
		c.dump("subject_submit", p.body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve level option")
		return nil, fmt.Errorf("level: %w", err)
	}
	_, termValue, err := form.OptionByText(term)
	if err != nil {
		c.dump("subject_submit", p.body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve term option")
		return nil, fmt.Errorf("term: %w", err)
	}

	overrides := map[string]string{
		sp.SubjectField: subject.Value,
		sp.LevelField:   levelValue,
		sp.TermField:    termValue,
	}
	if btn, ok := form.SubmitButton("course", "get", "submit"); ok && btn.Name != "" {
		overrides[btn.Name] = btn.Value
	}

	results, err := c.postForm(ctx, form.Action, form.BuildPost(overrides))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit subject")
		return nil, err
	}
	return results.body, nil
}

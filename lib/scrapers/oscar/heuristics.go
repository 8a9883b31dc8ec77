package oscar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOptionNotFound means no select on the page offered an option with
// the expected visible text. The expected text is a crawl input (a state
// name, an academic level, a term), so this is a structural failure, not
// something discoverable from the page.
var ErrOptionNotFound = errors.New("option not found")

// ErrSelectNotFound means none of the page's selects matched the
// heuristic for the field the current stage needs.
var ErrSelectNotFound = errors.New("expected select not found")

// OptionByText scans every select for an option whose trimmed visible
// text matches exactly, returning the owning select's name and the
// option's value.
func (f *Form) OptionByText(text string) (string, string, error) {
	for _, sel := range f.Selects {
		for _, opt := range sel.Options {
			if opt.Text == text {
				return sel.Name, opt.Value, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrOptionNotFound, text)
}

var schoolKeywords = []string{"school", "inst", "college", "univ"}

// SchoolSelect resolves the institution select: first by a
// case-insensitive keyword scan over select names, then falling back to
// the select with the most options.
func (f *Form) SchoolSelect() (Select, bool) {
	for _, sel := range f.Selects {
		name := strings.ToLower(sel.Name)
		for _, keyword := range schoolKeywords {
			if strings.Contains(name, keyword) {
				return sel, true
			}
		}
	}
	return f.LargestSelect()
}

// LargestSelect returns the select with the most options. The subject
// list is never labelled predictably, but it is always by far the
// largest select on its page.
func (f *Form) LargestSelect() (Select, bool) {
	var largest Select
	found := false
	for _, sel := range f.Selects {
		if len(sel.Options) > len(largest.Options) {
			largest = sel
			found = true
		}
	}
	return largest, found
}

// SubmitButton returns the first submit button whose visible value
// contains one of the given keywords (case-insensitive). When nothing
// matches the caller submits without an explicit button field and the
// server applies its default.
func (f *Form) SubmitButton(keywords ...string) (Button, bool) {
	for _, btn := range f.Buttons {
		value := strings.ToLower(btn.Value)
		for _, keyword := range keywords {
			if strings.Contains(value, keyword) {
				return btn, true
			}
		}
	}
	return Button{}, false
}

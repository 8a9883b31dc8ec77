package oscar

import (
	"errors"
	"net/url"
	"transfermap-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoForm means a fetched page contained no form element at all. The
// fetch itself succeeded, so retrying cannot help; the current unit of
// work has to be abandoned.
var ErrNoForm = errors.New("no form found on page")

type Option struct {
	Value string
	Text  string
}

type Select struct {
	Name string
	// Options excludes placeholder entries (empty value or empty
	// visible text), preserving document order of the rest.
	Options []Option
	// the value submitted for this select when nothing overrides it:
	// the option marked selected, else the first option in document
	// order.
	Default string
}

type Button struct {
	Name  string
	Value string
}

// Form is the structural model of the first form on a fetched page.
type Form struct {
	// absolute submission URL, resolved against the URL the page was
	// fetched from
	Action  string
	Hidden  map[string]string
	Selects []Select
	Buttons []Button
}

// ParseForm models the first form element of doc. fetchedFrom must be
// the final URL the document was fetched from so that a relative action
// resolves correctly.
func ParseForm(doc *goquery.Document, fetchedFrom *url.URL) (*Form, error) {
	node := doc.Find("form").First()
	if node.Length() == 0 {
		return nil, ErrNoForm
	}

	actionRef, err := url.Parse(node.AttrOr("action", ""))
	if err != nil {
		return nil, err
	}

	form := &Form{
		Action: fetchedFrom.ResolveReference(actionRef).String(),
		Hidden: map[string]string{},
	}

	node.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		form.Hidden[name] = input.AttrOr("value", "")
	})

	node.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			return
		}

		s := Select{Name: name}
		haveSelected := false
		sel.Find("option").Each(func(i int, opt *goquery.Selection) {
			value := opt.AttrOr("value", "")
			if i == 0 {
				s.Default = value
			}
			if _, ok := opt.Attr("selected"); ok && !haveSelected {
				s.Default = value
				haveSelected = true
			}

			text := htmlutil.CleanText(opt.Text())
			if value == "" || text == "" {
				// placeholder prompt, not real data
				return
			}
			s.Options = append(s.Options, Option{Value: value, Text: text})
		})
		form.Selects = append(form.Selects, s)
	})

	node.Find("input[type=submit]").Each(func(_ int, input *goquery.Selection) {
		form.Buttons = append(form.Buttons, Button{
			Name:  input.AttrOr("name", ""),
			Value: input.AttrOr("value", ""),
		})
	})

	return form, nil
}

// BuildPost assembles the submission body: every hidden field, the
// default value of every select not named in overrides, then the
// overrides themselves.
func (f *Form) BuildPost(overrides map[string]string) url.Values {
	data := url.Values{}
	for name, value := range f.Hidden {
		data.Set(name, value)
	}
	for _, sel := range f.Selects {
		if _, ok := overrides[sel.Name]; ok {
			continue
		}
		data.Set(sel.Name, sel.Default)
	}
	for name, value := range overrides {
		data.Set(name, value)
	}
	return data
}

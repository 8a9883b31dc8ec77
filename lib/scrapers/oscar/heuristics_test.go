package oscar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionByText(t *testing.T) {
	form := &Form{
		Selects: []Select{
			{Name: "state_sel", Options: []Option{
				{Value: "AL", Text: "Alabama"},
				{Value: "GA", Text: "Georgia"},
			}},
			{Name: "levl", Options: []Option{
				{Value: "U", Text: "Undergraduate"},
			}},
		},
	}

	field, value, err := form.OptionByText("Georgia")
	require.NoError(t, err)
	require.Equal(t, "state_sel", field)
	require.Equal(t, "GA", value)

	field, value, err = form.OptionByText("Undergraduate")
	require.NoError(t, err)
	require.Equal(t, "levl", field)
	require.Equal(t, "U", value)

	_, _, err = form.OptionByText("Atlantis")
	require.True(t, errors.Is(err, ErrOptionNotFound))
}

func TestSchoolSelect(t *testing.T) {
	// keyword match on the select name wins even when a larger select
	// exists
	form := &Form{
		Selects: []Select{
			{Name: "subjects", Options: make([]Option, 40)},
			{Name: "sch_inst", Options: make([]Option, 3)},
		},
	}
	sel, ok := form.SchoolSelect()
	require.True(t, ok)
	require.Equal(t, "sch_inst", sel.Name)

	// no keyword match falls back to the largest select
	form = &Form{
		Selects: []Select{
			{Name: "a", Options: make([]Option, 2)},
			{Name: "b", Options: make([]Option, 10)},
		},
	}
	sel, ok = form.SchoolSelect()
	require.True(t, ok)
	require.Equal(t, "b", sel.Name)

	_, ok = (&Form{}).SchoolSelect()
	require.False(t, ok)
}

func TestLargestSelect(t *testing.T) {
	form := &Form{
		Selects: []Select{
			{Name: "levl", Options: make([]Option, 2)},
			{Name: "subjects", Options: make([]Option, 30)},
			{Name: "term", Options: make([]Option, 4)},
		},
	}
	sel, ok := form.LargestSelect()
	require.True(t, ok)
	require.Equal(t, "subjects", sel.Name)
}

func TestSubmitButton(t *testing.T) {
	form := &Form{
		Buttons: []Button{
			{Name: "B1", Value: "Reset"},
			{Name: "B2", Value: "Get Course Info"},
		},
	}

	btn, ok := form.SubmitButton("course", "get", "submit")
	require.True(t, ok)
	require.Equal(t, "B2", btn.Name)

	_, ok = form.SubmitButton("yes")
	require.False(t, ok)
}

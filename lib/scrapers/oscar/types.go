// Package oscar scrapes the transfer course equivalency workflow of the
// OSCAR registration system. The workflow is a fixed sequence of
// server-driven HTML forms whose field names are not stable, so every
// page is interpreted through structural heuristics instead of a known
// schema.
package oscar

// School is one transferring institution as listed by the workflow.
// Value is the opaque option value submitted back to the server, Name is
// the human-readable institution name.
type School struct {
	Value string
	Name  string
}

// Subject is one subject code offered by a school, e.g. "BIOL".
type Subject struct {
	Value string
	Name  string
}

// Equivalency maps one course at a transferring school to the home
// institution course it grants credit for.
type Equivalency struct {
	Subject           string
	SchoolCourseCode  string
	SchoolCourseName  string
	SchoolCreditHours float64
	HomeCourseCode    string
	HomeCourseName    string
	HomeCreditHours   float64
}

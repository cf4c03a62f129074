// Package aggregate lays submissions out as a table whose columns are the
// form's current fields.
//
// The form may have changed since the submissions were stored. Columns come
// from the current fields only, so answers to removed fields are not shown.
// Stored values are rendered as they were stored, even when they are no
// longer among a field's options.
package aggregate

import (
	"strings"
	"time"

	"github.com/mbolis/quick-form/model"
)

const (
	// NoAnswer fills the cell of a field the submission has no value for.
	NoAnswer = "-"
	// Separator joins the members of a multi_choice answer.
	Separator = ", "

	SubmittedAtColumn = "submittedAt"
)

type Column struct {
	FieldID string        `json:"fieldId"`
	Label   string        `json:"label"`
	Variant model.Variant `json:"variant,omitempty"`
}

// Row is one submission. Cells line up with Table.Columns; the last cell
// is the submission time.
type Row struct {
	SubmissionID string    `json:"submissionId"`
	Cells        []string  `json:"cells"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type Table struct {
	FormID  string   `json:"formId"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Aggregate builds one row per submission, in the order given.
func Aggregate(form *model.FormDefinition, submissions []model.SubmissionRecord) Table {
	columns := make([]Column, 0, len(form.Fields)+1)
	for _, f := range form.Fields {
		columns = append(columns, Column{FieldID: f.ID, Label: f.Label, Variant: f.Variant})
	}
	columns = append(columns, Column{FieldID: SubmittedAtColumn, Label: "Submitted at"})

	rows := make([]Row, 0, len(submissions))
	for _, s := range submissions {
		cells := make([]string, 0, len(columns))
		for _, f := range form.Fields {
			cells = append(cells, Cell(f, s.Values))
		}
		cells = append(cells, s.SubmittedAt.UTC().Format(time.RFC3339))

		rows = append(rows, Row{
			SubmissionID: s.ID,
			Cells:        cells,
			SubmittedAt:  s.SubmittedAt,
		})
	}

	return Table{
		FormID:  form.ID,
		Title:   form.Title,
		Columns: columns,
		Rows:    rows,
	}
}

// Cell renders the stored value for f. Sets are joined in stored order;
// everything else is shown verbatim.
func Cell(f model.FieldDefinition, values map[string]model.Answer) string {
	a, ok := values[f.ID]
	if !ok {
		return NoAnswer
	}
	if a.IsSet() {
		return strings.Join(a.Members(), Separator)
	}
	return a.Text()
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type FormDefinition struct {
	ID          string            `json:"id" bson:"_id"`
	Title       string            `json:"title" bson:"title"`
	Description string            `json:"description" bson:"description"`
	Fields      []FieldDefinition `json:"fields" bson:"fields"`
	OwnerID     string            `json:"ownerId" bson:"ownerId"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
}

type FieldDefinition struct {
	ID          string   `json:"id" bson:"id"`
	Variant     Variant  `json:"variant" bson:"variant"`
	Label       string   `json:"label" bson:"label"`
	Placeholder string   `json:"placeholder" bson:"placeholder"`
	Required    bool     `json:"required" bson:"required"`
	Options     []string `json:"options" bson:"options"`
	Layout      string   `json:"layout" bson:"layout"`
}

// SubmissionRecord is one respondent's answers. Values is sparse: a field
// the respondent left unanswered has no key at all.
type SubmissionRecord struct {
	ID          string            `json:"id" bson:"_id"`
	FormID      string            `json:"formId" bson:"formId"`
	Values      map[string]Answer `json:"values" bson:"values"`
	SubmittedAt time.Time         `json:"submittedAt" bson:"submittedAt"`
}

func (f *FormDefinition) DocumentID() string { return f.ID }

func (f *FormDefinition) SetDocumentID(id string) { f.ID = id }

func (s *SubmissionRecord) DocumentID() string { return s.ID }

func (s *SubmissionRecord) SetDocumentID(id string) { s.ID = id }

// NewID returns a fresh time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Answer looks up the stored value for a field id.
func (s *SubmissionRecord) Answer(fieldID string) (Answer, bool) {
	a, ok := s.Values[fieldID]
	return a, ok
}

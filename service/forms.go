// Package service runs the authoring and responding operations against a
// store.Store. Services hold no state between calls; every operation is
// one or two single-document store round trips.
package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/store"
	"github.com/pkg/errors"
)

var (
	ErrFormNotFound       = stderrors.New("form not found")
	ErrSubmissionNotFound = stderrors.New("submission not found")
)

type Forms struct {
	store   store.Store
	metrics *metrics.Metrics
	now     func() time.Time

	// CascadeDelete makes Delete also remove the form's submissions.
	CascadeDelete bool
}

func NewForms(s store.Store, m *metrics.Metrics) *Forms {
	return &Forms{store: s, metrics: m, now: time.Now}
}

// Get loads a form by id for anyone, e.g. a respondent.
func (fs *Forms) Get(ctx context.Context, id string) (*model.FormDefinition, error) {
	form := &model.FormDefinition{}
	err := fs.store.FindOne(ctx, store.Forms, id, form)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load form %s", id)
	}
	form.Normalize()
	return form, nil
}

// GetOwned loads a form and checks it belongs to ownerID. A form owned by
// someone else is reported as not found.
func (fs *Forms) GetOwned(ctx context.Context, id, ownerID string) (*model.FormDefinition, error) {
	form, err := fs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		log.Debugf("service.forms: %s asked for form %s owned by %s", ownerID, id, form.OwnerID)
		return nil, ErrFormNotFound
	}
	return form, nil
}

func (fs *Forms) ListByOwner(ctx context.Context, ownerID string) ([]model.FormDefinition, error) {
	var forms []model.FormDefinition
	err := fs.store.FindMany(ctx, store.Forms, store.Filter{"ownerId": ownerID}, &forms)
	if err != nil {
		return nil, errors.Wrapf(err, "list forms of %s", ownerID)
	}
	for i := range forms {
		forms[i].Normalize()
	}
	return forms, nil
}

// Save validates form and writes it as one document. Fields without an id
// get a fresh one. A form without an id is created, owned by form.OwnerID; otherwise the stored form is replaced
// whole, keeping its owner and creation time. Concurrent saves of the same
// form are last-write-wins.
func (fs *Forms) Save(ctx context.Context, form *model.FormDefinition) error {
	form.Normalize()
	form.AssignFieldIDs()
	if err := form.Validate(); err != nil {
		return err
	}

	if form.ID == "" {
		form.CreatedAt = fs.now().UTC()
		if _, err := fs.store.Insert(ctx, store.Forms, form); err != nil {
			// nothing was written: leave form as the caller can retry it
			form.ID = ""
			form.CreatedAt = time.Time{}
			return errors.Wrap(err, "insert form")
		}
		log.WithFields(log.Fields{"form": form.ID, "owner": form.OwnerID}).Debug("form created")
		fs.metrics.FormSaved()
		return nil
	}

	existing, err := fs.GetOwned(ctx, form.ID, form.OwnerID)
	if err != nil {
		return err
	}
	form.CreatedAt = existing.CreatedAt

	err = fs.store.Replace(ctx, store.Forms, form.ID, form)
	if stderrors.Is(err, store.ErrNotFound) {
		// deleted between the read and the write
		return ErrFormNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "replace form %s", form.ID)
	}
	log.WithFields(log.Fields{"form": form.ID, "fields": len(form.Fields)}).Debug("form saved")
	fs.metrics.FormSaved()
	return nil
}

// Delete removes the form. Its submissions stay unless CascadeDelete is
// set; left behind they are orphans that List still returns.
func (fs *Forms) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := fs.GetOwned(ctx, id, ownerID); err != nil {
		return err
	}

	err := fs.store.DeleteOne(ctx, store.Forms, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return ErrFormNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "delete form %s", id)
	}

	if fs.CascadeDelete {
		return fs.deleteSubmissions(ctx, id)
	}
	return nil
}

func (fs *Forms) deleteSubmissions(ctx context.Context, formID string) error {
	var subs []model.SubmissionRecord
	err := fs.store.FindMany(ctx, store.Submissions, store.Filter{"formId": formID}, &subs)
	if err != nil {
		return errors.Wrapf(err, "list submissions of deleted form %s", formID)
	}
	for _, s := range subs {
		err := fs.store.DeleteOne(ctx, store.Submissions, s.ID)
		if err != nil && !stderrors.Is(err, store.ErrNotFound) {
			return errors.Wrapf(err, "delete submission %s of deleted form %s", s.ID, formID)
		}
	}
	log.WithFields(log.Fields{"form": formID, "submissions": len(subs)}).Debug("form submissions deleted")
	return nil
}

// Duplicate saves a copy of the form for ownerID. Field ids are
// regenerated.
func (fs *Forms) Duplicate(ctx context.Context, id, ownerID string) (*model.FormDefinition, error) {
	form, err := fs.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	cp := form.Duplicate()
	cp.OwnerID = ownerID
	if err := fs.Save(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// edit loads an owned form, applies fn and saves the result.
func (fs *Forms) edit(ctx context.Context, id, ownerID string, fn func(*model.FormDefinition) error) (*model.FormDefinition, error) {
	form, err := fs.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(form); err != nil {
		return nil, err
	}
	if err := fs.Save(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (fs *Forms) AddField(ctx context.Context, id, ownerID string, variant model.Variant, label string) (*model.FormDefinition, model.FieldDefinition, error) {
	var field model.FieldDefinition
	form, err := fs.edit(ctx, id, ownerID, func(f *model.FormDefinition) (err error) {
		field, err = f.AddField(variant, label)
		return
	})
	return form, field, err
}

func (fs *Forms) PatchField(ctx context.Context, id, ownerID, fieldID string, p model.FieldPatch) (*model.FormDefinition, error) {
	return fs.edit(ctx, id, ownerID, func(f *model.FormDefinition) error {
		_, err := f.PatchField(fieldID, p)
		return err
	})
}

func (fs *Forms) MoveField(ctx context.Context, id, ownerID, fieldID string, dir model.Direction) (*model.FormDefinition, error) {
	return fs.edit(ctx, id, ownerID, func(f *model.FormDefinition) error {
		return f.MoveField(fieldID, dir)
	})
}

// RemoveField drops a field from the form. Answers stored under its id
// are kept.
func (fs *Forms) RemoveField(ctx context.Context, id, ownerID, fieldID string) (*model.FormDefinition, error) {
	return fs.edit(ctx, id, ownerID, func(f *model.FormDefinition) error {
		return f.RemoveField(fieldID)
	})
}

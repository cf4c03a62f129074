package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mbolis/quick-form/aggregate"
	"github.com/mbolis/quick-form/codec"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/metrics"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/store"
	"github.com/pkg/errors"
)

type Submissions struct {
	store   store.Store
	forms   *Forms
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSubmissions(s store.Store, forms *Forms, m *metrics.Metrics) *Submissions {
	return &Submissions{store: s, forms: forms, metrics: m, now: time.Now}
}

// Submit validates raw against the form's current fields and stores one
// submission. Nothing is written when any field is rejected; the error then
// lists every rejected field (see codec.FieldErrors).
func (ss *Submissions) Submit(ctx context.Context, formID string, raw map[string]codec.RawValue) (*model.SubmissionRecord, error) {
	form, err := ss.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}

	values, err := codec.EncodeAll(form.Fields, raw)
	if err != nil {
		rejected := codec.FieldErrors(err)
		reasons := make([]string, len(rejected))
		for i, r := range rejected {
			reasons[i] = string(r.Reason)
		}
		log.WithFields(log.Fields{"form": formID, "reasons": reasons}).Debug("submission rejected")
		ss.metrics.SubmissionRejected(reasons...)
		return nil, err
	}

	rec := &model.SubmissionRecord{
		FormID:      formID,
		Values:      values,
		SubmittedAt: ss.now().UTC(),
	}
	if _, err := ss.store.Insert(ctx, store.Submissions, rec); err != nil {
		ss.metrics.SubmissionFailed()
		return nil, errors.Wrapf(err, "insert submission for form %s", formID)
	}

	log.WithFields(log.Fields{"form": formID, "submission": rec.ID, "answers": len(values)}).Debug("submission stored")
	ss.metrics.SubmissionAccepted()
	return rec, nil
}

// List returns the submissions stored for formID, whether or not the form
// still exists, in store order.
func (ss *Submissions) List(ctx context.Context, formID string) ([]model.SubmissionRecord, error) {
	var subs []model.SubmissionRecord
	err := ss.store.FindMany(ctx, store.Submissions, store.Filter{"formId": formID}, &subs)
	if err != nil {
		return nil, errors.Wrapf(err, "list submissions of form %s", formID)
	}
	return subs, nil
}

func (ss *Submissions) ListOwned(ctx context.Context, formID, ownerID string) ([]model.SubmissionRecord, error) {
	if _, err := ss.forms.GetOwned(ctx, formID, ownerID); err != nil {
		return nil, err
	}
	return ss.List(ctx, formID)
}

func (ss *Submissions) Get(ctx context.Context, id string) (*model.SubmissionRecord, error) {
	rec := &model.SubmissionRecord{}
	err := ss.store.FindOne(ctx, store.Submissions, id, rec)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load submission %s", id)
	}
	return rec, nil
}

// Delete removes one submission of a form owned by ownerID.
func (ss *Submissions) Delete(ctx context.Context, id, ownerID string) error {
	rec, err := ss.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ss.forms.GetOwned(ctx, rec.FormID, ownerID); err != nil {
		if stderrors.Is(err, ErrFormNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	err = ss.store.DeleteOne(ctx, store.Submissions, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return ErrSubmissionNotFound
	}
	return errors.Wrapf(err, "delete submission %s", id)
}

// Aggregate tabulates the form's submissions against its current fields.
func (ss *Submissions) Aggregate(ctx context.Context, formID, ownerID string) (aggregate.Table, error) {
	form, err := ss.forms.GetOwned(ctx, formID, ownerID)
	if err != nil {
		return aggregate.Table{}, err
	}
	subs, err := ss.List(ctx, formID)
	if err != nil {
		return aggregate.Table{}, err
	}
	return aggregate.Aggregate(form, subs), nil
}

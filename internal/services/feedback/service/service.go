// Package service reconciles user feedback into the audit log and commit links
package service

import (
	"context"

	"contextual/internal/modkit/repokit"
	"contextual/internal/platform/logger"
	"contextual/internal/services/feedback/domain"
	"contextual/internal/services/feedback/repo"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("feedback.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("feedback.Service requires a non nil Repo binder")
	}
	return &Svc{db: db, binder: binder}
}

// Reconcile appends the interaction, marks the latest notification clicked and,
// on confirmed feedback, upserts the commit link. All three share one transaction
func (s *Svc) Reconcile(ctx context.Context, in domain.Resolved) (domain.Result, error) {
	ctx = logger.WithEvent(ctx, in.TraceID, in.Commit)
	lg := logger.C(ctx)

	res := domain.Result{
		OK:        true,
		TraceID:   in.TraceID,
		Commit:    in.Commit,
		Jira:      in.Jira,
		Feedback:  in.Feedback,
		Top1:      in.Recommended,
		Selected:  in.Selected,
		Corrected: in.Corrected,
	}

	var found bool
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := repokit.MustBind(s.binder, q)
		if err := r.AppendInteraction(ctx, domain.Interaction{
			TraceID:     in.TraceID,
			Commit:      in.Commit,
			Recommended: in.Recommended,
			Feedback:    in.Feedback,
			Corrected:   in.Corrected,
		}); err != nil {
			return err
		}

		conf, ok, err := r.MarkClicked(ctx, in.TraceID, in.Commit)
		if err != nil {
			return err
		}
		found = ok

		if !in.Feedback {
			return nil
		}
		if err := r.UpsertLink(ctx, domain.Link{
			Commit:     in.Commit,
			JiraKey:    in.Selected,
			ProjectKey: domain.ProjectKey(in.Selected),
			Confidence: conf,
			TraceID:    in.TraceID,
		}); err != nil {
			return err
		}
		res.Linked = true
		return nil
	})
	if err != nil {
		lg.Error().Err(err).Str("provider", in.Provider).Bool("feedback", in.Feedback).Msg("feedback not recorded")
		return domain.Result{}, err
	}

	e := lg.Info().Str("provider", in.Provider).Bool("feedback", in.Feedback).
		Str("recommended", in.Recommended).Str("selected", in.Selected).Bool("linked", res.Linked)
	if !found {
		e = e.Bool("notification_missing", true)
	}
	e.Msg("feedback recorded")
	return res, nil
}

// Package exchange runs the request pipeline of the exam date exchange:
// creating a family from a catalog link, attaching desired dates, and the
// token-scoped operations on an existing family.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"exam_exchange/internal/catalog"
	"exam_exchange/internal/counteroffer"
	"exam_exchange/internal/family"
	"exam_exchange/internal/model"
	"exam_exchange/internal/notify"
	"exam_exchange/internal/storage"
)

// Catalog is the part of the catalog client the pipeline needs.
type Catalog interface {
	FetchDetail(ctx context.Context, offerID int64) (*catalog.Detail, error)
	counteroffer.DateSource
}

// Options configures optional collaborators of a Service.
type Options struct {
	// PublicBaseURL is the prefix of family management links.
	PublicBaseURL string
	Notifier      notify.Notifier
	Announcer     notify.Announcer
}

// Service is the exchange request pipeline.
type Service struct {
	store     storage.Storage
	catalog   Catalog
	finder    *counteroffer.Finder
	lifecycle *family.Lifecycle
	notifier  notify.Notifier
	announcer notify.Announcer
	baseURL   string
	log       *slog.Logger
}

// New creates a Service. Missing notifiers default to notify.Discard.
func New(store storage.Storage, cat Catalog, opts Options, log *slog.Logger) *Service {
	s := &Service{
		store:     store,
		catalog:   cat,
		finder:    counteroffer.New(store, cat),
		lifecycle: family.NewLifecycle(store),
		notifier:  opts.Notifier,
		announcer: opts.Announcer,
		baseURL:   strings.TrimRight(opts.PublicBaseURL, "/"),
		log:       log,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.announcer == nil {
		s.announcer = notify.Discard{}
	}
	return s
}

// CreateRequest is a new advert submission.
type CreateRequest struct {
	Email string
	Link  string
	// Dates are optional. When given, the family is expanded and activated
	// in the same step.
	Dates []time.Time
}

// Draft is a created family together with the dates its author can pick.
type Draft struct {
	Token   model.Token
	Members []model.Advert
	// Counteroffers lists future dates of the family's subjects, excluding
	// the offered date. Empty when the family was created with dates.
	Counteroffers []time.Time
}

// Family is a family as seen by its token holder.
type Family struct {
	View        model.GeneralizedView
	Members     []model.Advert
	Subjects    []model.Subject
	SearchDates []time.Time
}

// Create seeds a family, extracts the offered date from the catalog and
// expands the family by the subjects that date serves. When extraction
// fails, only the bare seed is left behind.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Draft, error) {
	seed := &model.Advert{ContactEmail: req.Email}
	if err := family.NewExpander(s.store).Generate(ctx, seed); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	log := s.log.With("token_prefix", seed.Token.Prefix())

	offerID, err := catalog.ExtractOfferID(req.Link)
	if err != nil {
		return nil, err
	}
	detail, err := s.catalog.FetchDetail(ctx, offerID)
	if err != nil {
		log.Warn("catalog extraction failed", "offer_id", offerID, "error", err)
		return nil, fmt.Errorf("fetch offer %d: %w", offerID, err)
	}

	var members []model.Advert
	err = s.store.InTx(ctx, func(tx storage.Storage) error {
		e := family.NewExpander(tx)
		working := *seed
		working.ExternalOfferID = detail.OfferID
		offered := detail.OfferedAt
		working.OfferedAt = &offered

		members, err = e.ExpandBySubjects(ctx, &working, detail.Subjects)
		if err != nil {
			return err
		}
		if len(req.Dates) == 0 {
			return nil
		}
		members, err = e.ExpandBySearchDates(ctx, members, req.Dates)
		if err != nil {
			return err
		}
		_, err = tx.SetFamilyActive(ctx, seed.Token, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("expand family: %w", err)
	}
	log.Info("family created", "offer_id", offerID, "rows", len(members))

	draft := &Draft{Token: seed.Token, Members: members}
	if len(req.Dates) > 0 {
		for i := range draft.Members {
			draft.Members[i].Active = true
		}
		s.published(ctx, log, draft.Members, true)
		return draft, nil
	}

	dates, err := s.counteroffers(ctx, members)
	if err != nil {
		// The family exists; the author can list options later.
		log.Warn("counteroffer lookup failed", "error", err)
	}
	draft.Counteroffers = dates
	return draft, nil
}

// SubmitDates expands a family created without dates by the given desired
// dates and activates it. A family whose members already carry dates is
// rejected with family.ErrAlreadyExpanded.
func (s *Service) SubmitDates(ctx context.Context, token model.Token, dates []time.Time, sendMail bool) ([]model.Advert, error) {
	var members []model.Advert
	err := s.store.InTx(ctx, func(tx storage.Storage) error {
		current, err := family.NewLifecycle(tx).ListMembers(ctx, token)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(current, func(a model.Advert) bool { return a.DesiredDate != nil }) {
			return family.ErrAlreadyExpanded
		}
		if current[0].SubjectCode == "" {
			return family.ErrNoSubjectsFound
		}
		members, err = family.NewExpander(tx).ExpandBySearchDates(ctx, current, dates)
		if err != nil {
			return err
		}
		_, err = tx.SetFamilyActive(ctx, token, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("submit dates: %w", err)
	}
	for i := range members {
		members[i].Active = true
	}

	log := s.log.With("token_prefix", token.Prefix())
	log.Info("family expanded", "rows", len(members))
	s.published(ctx, log, members, sendMail)
	return members, nil
}

// published sends the created notification and the channel announcement.
// Delivery failures are logged; the family stays active.
func (s *Service) published(ctx context.Context, log *slog.Logger, members []model.Advert, sendMail bool) {
	view := s.lifecycle.Generalize(members[0])
	subjects, dates := axes(members)
	if sendMail {
		if err := s.notifier.NotifyCreated(ctx, view, dates, s.ManageURL(view.Token)); err != nil {
			log.Error("created notification failed", "error", err)
		}
	}
	if err := s.announcer.Announce(ctx, view, subjects, dates); err != nil {
		log.Error("announcement failed", "error", err)
	}
}

// View returns the family of token.
func (s *Service) View(ctx context.Context, token model.Token) (*Family, error) {
	members, err := s.lifecycle.ListMembers(ctx, token)
	if err != nil {
		return nil, err
	}
	dates, err := s.lifecycle.ListDistinctSearchDates(ctx, token)
	if err != nil {
		return nil, err
	}
	subjects, _ := axes(members)
	return &Family{
		View:        s.lifecycle.Generalize(members[0]),
		Members:     members,
		Subjects:    subjects,
		SearchDates: dates,
	}, nil
}

// Activate lists the family. Unknown tokens fail with storage.ErrNotFound,
// families still waiting for desired dates with family.ErrNotExpanded.
func (s *Service) Activate(ctx context.Context, token model.Token) error {
	return s.setActive(ctx, token, true)
}

// Deactivate hides the family. Unknown tokens fail with storage.ErrNotFound.
func (s *Service) Deactivate(ctx context.Context, token model.Token) error {
	return s.setActive(ctx, token, false)
}

func (s *Service) setActive(ctx context.Context, token model.Token, active bool) error {
	members, err := s.lifecycle.ListMembers(ctx, token)
	if err != nil {
		return err
	}
	if active && slices.ContainsFunc(members, func(a model.Advert) bool { return a.DesiredDate == nil }) {
		return family.ErrNotExpanded
	}
	set := s.lifecycle.Deactivate
	if active {
		set = s.lifecycle.Activate
	}
	if err := set(ctx, token); err != nil {
		return err
	}
	s.log.Info("family visibility changed", "token_prefix", token.Prefix(), "active", active)
	return nil
}

// Delete removes the family. Deleting an unknown token succeeds.
func (s *Service) Delete(ctx context.Context, token model.Token) (int64, error) {
	n, err := s.lifecycle.Delete(ctx, token)
	if err != nil {
		return 0, err
	}
	s.log.Info("family deleted", "token_prefix", token.Prefix(), "rows", n)
	return n, nil
}

// Board lists active rows, optionally of one subject, highlighted first.
func (s *Service) Board(ctx context.Context, subjectCode string) ([]model.Advert, error) {
	adverts, err := s.store.ListActiveAdverts(ctx, subjectCode)
	if err != nil {
		return nil, fmt.Errorf("list board: %w", err)
	}
	return adverts, nil
}

// React forwards a message to the author of an active row. When delivery is
// confirmed, the whole family is hidden from the board.
func (s *Service) React(ctx context.Context, advertID int64, replyTo, message string) (bool, error) {
	advert, err := s.store.GetActiveAdvert(ctx, advertID)
	if err != nil {
		return false, fmt.Errorf("load advert %d: %w", advertID, err)
	}
	delivered, err := s.notifier.NotifyReply(ctx, *advert, replyTo, message)
	if err != nil {
		return false, fmt.Errorf("notify reply: %w", err)
	}
	if !delivered {
		return false, nil
	}
	if err := s.lifecycle.Deactivate(ctx, advert.Token); err != nil {
		return true, err
	}
	s.log.Info("reply delivered, family hidden", "advert_id", advertID, "token_prefix", advert.Token.Prefix())
	return true, nil
}

// Counteroffers lists future dates of every subject in the family, excluding
// the offered date.
func (s *Service) Counteroffers(ctx context.Context, token model.Token) ([]time.Time, error) {
	members, err := s.lifecycle.ListMembers(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.counteroffers(ctx, members)
}

func (s *Service) counteroffers(ctx context.Context, members []model.Advert) ([]time.Time, error) {
	subjects, _ := axes(members)
	out := []time.Time{}
	for _, subj := range subjects {
		dates, err := s.finder.Find(ctx, subj.Code)
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug("subject has no local metadata", "subject_code", subj.Code)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			if !slices.ContainsFunc(out, d.Equal) {
				out = append(out, d)
			}
		}
	}
	if offered := members[0].OfferedAt; offered != nil {
		day := model.DateOnly(*offered)
		out = slices.DeleteFunc(out, day.Equal)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out, nil
}

// SearchSubjects looks up taught subjects whose title contains q.
func (s *Service) SearchSubjects(ctx context.Context, q string) ([]model.SubjectInfo, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	subjects, err := s.store.SearchSubjects(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search subjects: %w", err)
	}
	return subjects, nil
}

// PutSubject stores local metadata of a subject.
func (s *Service) PutSubject(ctx context.Context, info model.SubjectInfo) error {
	if info.Code == "" {
		return errors.New("subject code is required")
	}
	if err := s.store.PutSubject(ctx, info); err != nil {
		return fmt.Errorf("put subject: %w", err)
	}
	return nil
}

// ManageURL is the link giving full control over the family of token.
func (s *Service) ManageURL(token model.Token) string {
	return s.baseURL + "/advert?" + url.Values{"token": {token.String()}}.Encode()
}

// axes returns the distinct subjects and desired dates of a family in the
// order they first appear.
func axes(members []model.Advert) ([]model.Subject, []time.Time) {
	var subjects []model.Subject
	var dates []time.Time
	for _, m := range members {
		if m.SubjectCode != "" && !slices.ContainsFunc(subjects, func(s model.Subject) bool { return s.Code == m.SubjectCode }) {
			subjects = append(subjects, m.Subject())
		}
		if m.DesiredDate != nil && !slices.ContainsFunc(dates, m.DesiredDate.Equal) {
			dates = append(dates, *m.DesiredDate)
		}
	}
	return subjects, dates
}

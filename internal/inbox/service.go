// Package inbox owns the contact-message collections: it validates new
// submissions and serializes every read-modify-write of the persisted
// documents through a single writer.
package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/ids"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/metrics"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/models"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/store"
)

// TimeFormat matches JavaScript's Date.prototype.toISOString.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Service is the message store. All operations, reads included, hold mu for
// their whole load/mutate/save cycle.
type Service struct {
	mu     sync.Mutex
	store  store.DocumentStore
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service over the given document store.
func NewService(st store.DocumentStore, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: logger.With().Str("component", "inbox").Logger(),
		now:    time.Now,
		newID:  ids.NewMessageID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing document store.
func (s *Service) Store() store.DocumentStore {
	return s.store
}

// Create sanitizes and validates input, then appends a new message to the
// active collection.
func (s *Service) Create(ctx context.Context, in models.ContactInput) (*models.Message, error) {
	in = Sanitize(in)
	if err := Validate(in); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(verr.Rule).Inc()
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, _, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:      s.newID(),
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
		Status:  models.StatusNew,
		Read:    false,
		Date:    s.timestamp(),
	}
	active = append(active, msg)

	if err := s.save(ctx, "create", collectionDoc(store.DocMessages, active)); err != nil {
		return nil, err
	}

	metrics.MessagesCreated.Inc()
	s.logger.Info().Str("id", msg.ID).Msg("message created")
	return &msg, nil
}

// List returns the active collection in arrival order.
func (s *Service) List(ctx context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, _, err := s.loadAll(ctx)
	return active, err
}

// ListArchived returns the archived collection in archival order.
func (s *Service) ListArchived(ctx context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, archived, err := s.loadAll(ctx)
	return archived, err
}

// UpdateStatus sets status and/or read on an active message. An empty update
// succeeds without touching the store.
func (s *Service) UpdateStatus(ctx context.Context, id string, u models.StatusUpdate) error {
	if err := validateUpdate(u); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, _, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	i := indexOf(active, id)
	if i < 0 {
		return ErrNotFound
	}
	if u.Empty() {
		return nil
	}

	if u.Status != nil {
		active[i].Status = *u.Status
	}
	if u.Read != nil {
		active[i].Read = *u.Read
	}

	if err := s.save(ctx, "update", collectionDoc(store.DocMessages, active)); err != nil {
		return err
	}

	metrics.MessagesUpdated.Inc()
	return nil
}

// Archive moves a message from the active to the archived collection.
// The archived document is written before the active one; loadAll drops any
// id found in both, so an interrupted archive never loses or duplicates it.
func (s *Service) Archive(ctx context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, archived, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(active, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	msg := active[i]
	msg.ArchivedAt = s.timestamp()

	remaining := make([]models.Message, 0, len(active)-1)
	remaining = append(remaining, active[:i]...)
	remaining = append(remaining, active[i+1:]...)
	archived = append(archived, msg)

	err = s.save(ctx, "archive",
		collectionDoc(store.DocArchived, archived),
		collectionDoc(store.DocMessages, remaining),
	)
	if err != nil {
		return nil, err
	}

	metrics.MessagesArchived.Inc()
	s.logger.Info().Str("id", id).Msg("message archived")
	return &msg, nil
}

// loadAll reads both collections and reconciles them.
func (s *Service) loadAll(ctx context.Context) (active, archived []models.Message, err error) {
	active, err = s.load(ctx, store.DocMessages)
	if err != nil {
		return nil, nil, err
	}
	archived, err = s.load(ctx, store.DocArchived)
	if err != nil {
		return nil, nil, err
	}
	return reconcile(active, archived), archived, nil
}

func (s *Service) load(ctx context.Context, name string) ([]models.Message, error) {
	start := time.Now()
	data, err := s.store.Load(ctx, name)
	metrics.StoreLatency.WithLabelValues("load").Observe(time.Since(start).Seconds())

	if errors.Is(err, store.ErrNotFound) {
		return []models.Message{}, nil
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		s.logger.Error().Err(err).Str("document", name).Msg("failed to load collection")
		return nil, unavailable("load "+name, err)
	}

	// A document that exists but is blank is a freshly created file.
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Message{}, nil
	}

	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		s.logger.Error().Err(err).Str("document", name).Msg("corrupt collection")
		return nil, unavailable("decode "+name, err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

func (s *Service) save(ctx context.Context, op string, docs ...docResult) error {
	out := make([]store.Document, 0, len(docs))
	for _, d := range docs {
		if d.err != nil {
			metrics.StoreErrors.WithLabelValues(op).Inc()
			return unavailable("encode", d.err)
		}
		out = append(out, d.doc)
	}

	start := time.Now()
	err := s.store.Save(ctx, out...)
	metrics.StoreLatency.WithLabelValues("save").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreErrors.WithLabelValues(op).Inc()
		s.logger.Error().Err(err).Str("op", op).Msg("failed to save collection")
		return unavailable(op, err)
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(TimeFormat)
}

type docResult struct {
	doc store.Document
	err error
}

// collectionDoc encodes msgs the way the original messages.json was written:
// a two-space indented array with HTML characters left unescaped.
func collectionDoc(name string, msgs []models.Message) docResult {
	if msgs == nil {
		msgs = []models.Message{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return docResult{err: err}
	}
	return docResult{doc: store.Document{Name: name, Body: bytes.TrimRight(buf.Bytes(), "\n")}}
}

// reconcile removes from active every id that is already archived.
func reconcile(active, archived []models.Message) []models.Message {
	if len(archived) == 0 {
		return active
	}
	seen := make(map[string]struct{}, len(archived))
	for _, m := range archived {
		seen[m.ID] = struct{}{}
	}
	out := active[:0:0]
	for _, m := range active {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		out = append(out, m)
	}
	return out
}

func indexOf(msgs []models.Message, id string) int {
	for i := range msgs {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}

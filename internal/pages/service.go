package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-storefront-cms/internal/activity"
	"github.com/goliatone/go-storefront-cms/internal/domain"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
)

// Service manages pages. Publishing is a flag: the first transition to
// published stamps PublishedAt, later transitions never touch it.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context, opts ListOptions) ([]*Page, error)
	Update(ctx context.Context, req UpdatePageRequest) (*Page, error)
	Delete(ctx context.Context, req DeletePageRequest) error
	Publish(ctx context.Context, id uuid.UUID, actor uuid.UUID) (*Page, error)
	Unpublish(ctx context.Context, id uuid.UUID, actor uuid.UUID) (*Page, error)
}

type CreatePageRequest struct {
	ID              uuid.UUID
	Slug            string
	Title           string
	MetaDescription string
	MetaKeywords    string
	Publish         bool
	CreatedBy       uuid.UUID
}

// UpdatePageRequest is a partial patch; nil fields are left alone.
type UpdatePageRequest struct {
	ID              uuid.UUID
	Slug            *string
	Title           *string
	MetaDescription *string
	MetaKeywords    *string
	Published       *bool
	UpdatedBy       uuid.UUID
}

type DeletePageRequest struct {
	ID        uuid.UUID
	DeletedBy uuid.UUID
}

// DeleteHook runs after a page is removed so owners of dependent rows can
// clean up. Hooks must tolerate rows that are already gone.
type DeleteHook func(ctx context.Context, pageID uuid.UUID) error

var (
	ErrIDRequired    = errors.New("pages: id required")
	ErrSlugRequired  = errors.New("pages: slug required")
	ErrSlugInvalid   = errors.New("pages: slug invalid")
	ErrTitleRequired = errors.New("pages: title required")
	ErrEmptyPatch    = errors.New("pages: no fields to update")
)

type IDGenerator func() uuid.UUID

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivity(emitter *activity.Emitter) ServiceOption {
	return func(s *service) { s.activity = emitter }
}

// WithDeleteHooks registers cascades for stores the repository cannot reach.
func WithDeleteHooks(hooks ...DeleteHook) ServiceOption {
	return func(s *service) {
		for _, hook := range hooks {
			if hook != nil {
				s.deleteHooks = append(s.deleteHooks, hook)
			}
		}
	}
}

type service struct {
	repo        PageRepository
	now         func() time.Time
	id          IDGenerator
	logger      interfaces.Logger
	activity    *activity.Emitter
	deleteHooks []DeleteHook
}

func NewService(repo PageRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeSlug lowercases and hyphenates raw with go-slug.
func NormalizeSlug(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}

func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	slugValue, err := NormalizeSlug(req.Slug)
	if err != nil {
		return nil, domain.Invalid("page", "slug", err)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.Invalid("page", "title", ErrTitleRequired)
	}
	if err := s.ensureSlugFree(ctx, slugValue, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := req.ID
	if id == uuid.Nil {
		id = s.id()
	}
	page := &Page{
		ID:              id,
		Slug:            slugValue,
		Title:           title,
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		MetaKeywords:    strings.TrimSpace(req.MetaKeywords),
		CreatedBy:       req.CreatedBy,
		UpdatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	setPublished(page, req.Publish, now)

	created, err := s.repo.Create(ctx, page)
	if err != nil {
		s.logger.Error("pages.create.failed", "slug", slugValue, "error", err)
		return nil, err
	}
	s.logger.Info("pages.create.complete", "page_id", created.ID, "slug", created.Slug)
	s.emit(ctx, "page.created", created.ID, req.CreatedBy, map[string]any{"slug": created.Slug})
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, domain.Invalid("page", "id", ErrIDRequired)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, raw string) (*Page, error) {
	slugValue, err := NormalizeSlug(raw)
	if err != nil {
		return nil, domain.Invalid("page", "slug", err)
	}
	return s.repo.GetBySlug(ctx, slugValue)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	if strings.TrimSpace(opts.Slug) != "" {
		normalized, err := NormalizeSlug(opts.Slug)
		if err != nil {
			return nil, domain.Invalid("page", "slug", err)
		}
		opts.Slug = normalized
	}
	return s.repo.List(ctx, opts)
}

func (s *service) Update(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	if req.ID == uuid.Nil {
		return nil, domain.Invalid("page", "id", ErrIDRequired)
	}
	if req.Slug == nil && req.Title == nil && req.MetaDescription == nil && req.MetaKeywords == nil && req.Published == nil {
		return nil, domain.Invalid("page", "", ErrEmptyPatch)
	}

	page, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		slugValue, err := NormalizeSlug(*req.Slug)
		if err != nil {
			return nil, domain.Invalid("page", "slug", err)
		}
		if slugValue != page.Slug {
			if err := s.ensureSlugFree(ctx, slugValue, page.ID); err != nil {
				return nil, err
			}
		}
		page.Slug = slugValue
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.Invalid("page", "title", ErrTitleRequired)
		}
		page.Title = title
	}
	if req.MetaDescription != nil {
		page.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	if req.MetaKeywords != nil {
		page.MetaKeywords = strings.TrimSpace(*req.MetaKeywords)
	}

	now := s.now().UTC()
	if req.Published != nil {
		setPublished(page, *req.Published, now)
	}
	page.UpdatedBy = req.UpdatedBy
	page.UpdatedAt = now

	updated, err := s.repo.Update(ctx, page)
	if err != nil {
		s.logger.Error("pages.update.failed", "page_id", req.ID, "error", err)
		return nil, err
	}
	s.emit(ctx, "page.updated", updated.ID, req.UpdatedBy, map[string]any{"slug": updated.Slug, "is_published": updated.IsPublished})
	return updated, nil
}

func (s *service) Publish(ctx context.Context, id uuid.UUID, actor uuid.UUID) (*Page, error) {
	published := true
	return s.Update(ctx, UpdatePageRequest{ID: id, Published: &published, UpdatedBy: actor})
}

func (s *service) Unpublish(ctx context.Context, id uuid.UUID, actor uuid.UUID) (*Page, error) {
	published := false
	return s.Update(ctx, UpdatePageRequest{ID: id, Published: &published, UpdatedBy: actor})
}

func (s *service) Delete(ctx context.Context, req DeletePageRequest) error {
	if req.ID == uuid.Nil {
		return domain.Invalid("page", "id", ErrIDRequired)
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("pages.delete.failed", "page_id", req.ID, "error", err)
		}
		return err
	}
	for _, hook := range s.deleteHooks {
		if err := hook(ctx, req.ID); err != nil {
			s.logger.Error("pages.delete.cascade_failed", "page_id", req.ID, "error", err)
			return err
		}
	}
	s.logger.Info("pages.delete.complete", "page_id", req.ID)
	s.emit(ctx, "page.deleted", req.ID, req.DeletedBy, nil)
	return nil
}

func (s *service) ensureSlugFree(ctx context.Context, slugValue string, self uuid.UUID) error {
	existing, err := s.repo.GetBySlug(ctx, slugValue)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.Conflict("page", "slug", slugValue)
	default:
		return nil
	}
}

func (s *service) emit(ctx context.Context, verb string, id, actor uuid.UUID, data map[string]any) {
	s.activity.Emit(ctx, activity.Event{Verb: verb, ObjectType: "page", ObjectID: id, ActorID: actor, Data: data})
}

// setPublished flips the flag and stamps PublishedAt on the first publish only.
func setPublished(page *Page, published bool, now time.Time) {
	page.IsPublished = published
	if published && page.PublishedAt == nil {
		ts := now
		page.PublishedAt = &ts
	}
}

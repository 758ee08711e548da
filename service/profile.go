package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Xaroyw/ArtCore/events"
	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/repository"
)

// ProfileEventSink receives profile change events. Satisfied by
// publisher.EventPublisher; may be nil when eventing is disabled.
type ProfileEventSink interface {
	PublishProfileUpdated(event events.ProfileUpdatedEvent) error
}

// Subscription delivers profile snapshots until Unsubscribe is called.
// The first snapshot is sent on subscribe, then one per mutation. A
// subscriber that stops draining C misses snapshots rather than
// blocking the store.
type Subscription struct {
	C chan models.Account

	svc       *ProfileService
	accountID uuid.UUID
	once      sync.Once
}

// Unsubscribe detaches the subscription and closes C. Safe to call
// more than once; must be called on every exit path of the consumer.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.svc.mu.Lock()
		if subs, ok := s.svc.subs[s.accountID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.svc.subs, s.accountID)
			}
		}
		s.svc.mu.Unlock()
		close(s.C)
	})
}

// ProfileService owns the per-user account record and pushes snapshot
// notifications to registered subscribers.
type ProfileService struct {
	accounts  repository.AccountRepository
	publisher ProfileEventSink

	mu   sync.Mutex
	subs map[uuid.UUID]map[*Subscription]struct{}
}

func NewProfileService(accounts repository.AccountRepository, publisher ProfileEventSink) *ProfileService {
	return &ProfileService{
		accounts:  accounts,
		publisher: publisher,
		subs:      make(map[uuid.UUID]map[*Subscription]struct{}),
	}
}

// IsNicknameTaken reports whether any account currently holds the
// nickname. The answer is one round trip; it is not atomic with a
// write that follows, so two concurrent check-then-write sequences can
// both pass. That race exists in the client this service replaces and
// is deliberately left open.
func (s *ProfileService) IsNicknameTaken(ctx context.Context, nickname string) (bool, error) {
	taken, err := s.accounts.NicknameExists(ctx, nickname)
	if err != nil {
		return false, apperr.Wrap(apperr.KindNetwork, "failed to check nickname", err)
	}
	return taken, nil
}

// CreateAccount writes the initial record. Callers run the email and
// nickname uniqueness checks first.
func (s *ProfileService) CreateAccount(ctx context.Context, id uuid.UUID, email, nickname, passwordHash string) (*models.Account, error) {
	now := time.Now()
	account := &models.Account{
		ID:             id,
		Email:          email,
		Nickname:       nickname,
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		UpdatedAt:      now,
		UploadedImages: []string{},
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to create account", err)
	}
	return account, nil
}

func (s *ProfileService) UpdateNickname(ctx context.Context, id uuid.UUID, newNickname string) error {
	if newNickname == "" {
		return apperr.New(apperr.KindValidation, "nickname must not be empty")
	}

	taken, err := s.IsNicknameTaken(ctx, newNickname)
	if err != nil {
		return err
	}
	if taken {
		return apperr.New(apperr.KindConflict, "nickname already taken")
	}

	if err := s.accounts.UpdateNickname(ctx, id, newNickname); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "account not found", err)
		}
		return apperr.Wrap(apperr.KindNetwork, "failed to update nickname", err)
	}

	s.emitProfileUpdated(id, newNickname)
	s.NotifyChanged(ctx, id)
	return nil
}

func (s *ProfileService) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	if err := s.accounts.UpdateAvatarURL(ctx, id, url); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "account not found", err)
		}
		return apperr.Wrap(apperr.KindNetwork, "failed to set avatar", err)
	}

	s.NotifyChanged(ctx, id)
	return nil
}

// GetProfile returns the account with its uploadedImages list loaded.
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, "account not found", err)
		}
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to get account", err)
	}

	images, err := s.accounts.ListImages(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to list images", err)
	}
	if images == nil {
		images = []string{}
	}
	account.UploadedImages = images
	return account, nil
}

// Subscribe registers a listener for the account's profile. The
// current snapshot is delivered immediately, then a new one after
// every mutation, until Unsubscribe.
func (s *ProfileService) Subscribe(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	current, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		C:         make(chan models.Account, 8),
		svc:       s,
		accountID: id,
	}

	s.mu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[*Subscription]struct{})
	}
	s.subs[id][sub] = struct{}{}
	s.mu.Unlock()

	sub.C <- *current
	return sub, nil
}

// NotifyChanged reloads the profile and fans the snapshot out to every
// subscriber of the account. A reload failure is logged; subscribers
// simply keep their previous snapshot.
func (s *ProfileService) NotifyChanged(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	n := len(s.subs[id])
	s.mu.Unlock()
	if n == 0 {
		return
	}

	snapshot, err := s.GetProfile(ctx, id)
	if err != nil {
		log.Printf("profile notify: failed to load snapshot for %s: %v", id, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs[id] {
		select {
		case sub.C <- *snapshot:
		default:
		}
	}
}

func (s *ProfileService) emitProfileUpdated(id uuid.UUID, nickname string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishProfileUpdated(events.ProfileUpdatedEvent{
		AccountID: id,
		Nickname:  nickname,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("failed to publish profile.updated for %s: %v", id, err)
	}
}

// Package library implements the write path of a user's library:
// notes, folders and participant follows. Every mutation commits its
// transaction first, then synchronously evicts the affected cache
// entries before returning, so a read issued after a successful
// mutation never observes the pre-mutation payload.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

const maxNoteLength = 10000

// ---------------------------------------------------------------------------
// Dependencies (consumer-defined interfaces)
// ---------------------------------------------------------------------------

type noteRepo interface {
	Create(ctx context.Context, userID, cardID int64, text string) (domain.Note, error)
	Delete(ctx context.Context, userID, noteID int64) error
}

type folderRepo interface {
	GetDefault(ctx context.Context, userID int64) (domain.Folder, error)
	GetByID(ctx context.Context, userID, folderID int64) (domain.Folder, error)
	AddCard(ctx context.Context, folderID, cardID int64) (bool, error)
	RemoveCard(ctx context.Context, folderID, cardID int64) error
}

type participantRepo interface {
	Follow(ctx context.Context, userID, participantID int64) (bool, error)
	Unfollow(ctx context.Context, userID, participantID int64) (bool, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type cacheInvalidator interface {
	InvalidateEntity(entityType domain.EntityType, entityID int64)
	InvalidateUser(userID int64)
}

// Service is the library write-path service.
type Service struct {
	notes        noteRepo
	folders      folderRepo
	participants participantRepo
	tx           txManager
	cache        cacheInvalidator
	log          *slog.Logger
}

// New creates the library service.
func New(
	notes noteRepo,
	folders folderRepo,
	participants participantRepo,
	tx txManager,
	cache cacheInvalidator,
	log *slog.Logger,
) *Service {
	return &Service{
		notes:        notes,
		folders:      folders,
		participants: participants,
		tx:           tx,
		cache:        cache,
		log:          log.With("component", "library_service"),
	}
}

// AddNote attaches a private note to a card for the user.
func (s *Service) AddNote(ctx context.Context, userID, cardID int64, text string) (domain.Note, error) {
	if userID == 0 {
		return domain.Note{}, fmt.Errorf("add note: %w", domain.ErrUnauthorized)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Note{}, domain.NewValidationError("text", "must not be empty")
	}
	if len(text) > maxNoteLength {
		return domain.Note{}, domain.NewValidationError("text",
			fmt.Sprintf("must be at most %d characters", maxNoteLength))
	}

	var note domain.Note
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.notes.Create(ctx, userID, cardID, text)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("add note: %w", err)
	}

	s.invalidate(userID, domain.EntityNote, note.ID)

	s.log.Info("note added",
		slog.Int64("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.Int64("note_id", note.ID),
	)
	return note, nil
}

// DeleteNote removes the user's note.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID int64) error {
	if userID == 0 {
		return fmt.Errorf("delete note: %w", domain.ErrUnauthorized)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.notes.Delete(ctx, userID, noteID)
	})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	s.invalidate(userID, domain.EntityNote, noteID)
	return nil
}

// SaveToFolder puts a card into one of the user's folders. A zero
// folderID targets the default folder. Saving an already saved card is
// a no-op that still reports success.
func (s *Service) SaveToFolder(ctx context.Context, userID, cardID, folderID int64) (domain.Folder, error) {
	if userID == 0 {
		return domain.Folder{}, fmt.Errorf("save to folder: %w", domain.ErrUnauthorized)
	}

	var (
		folder domain.Folder
		added  bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = s.resolveFolder(ctx, userID, folderID)
		if err != nil {
			return err
		}
		added, err = s.folders.AddCard(ctx, folder.ID, cardID)
		return err
	})
	if err != nil {
		return domain.Folder{}, fmt.Errorf("save to folder: %w", err)
	}

	if added {
		s.invalidate(userID, domain.EntityFolder, folder.ID)
	}
	return folder, nil
}

// RemoveFromFolder takes a card out of one of the user's folders. A
// zero folderID targets the default folder.
func (s *Service) RemoveFromFolder(ctx context.Context, userID, cardID, folderID int64) error {
	if userID == 0 {
		return fmt.Errorf("remove from folder: %w", domain.ErrUnauthorized)
	}

	var folder domain.Folder
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = s.resolveFolder(ctx, userID, folderID)
		if err != nil {
			return err
		}
		return s.folders.RemoveCard(ctx, folder.ID, cardID)
	})
	if err != nil {
		return fmt.Errorf("remove from folder: %w", err)
	}

	s.invalidate(userID, domain.EntityFolder, folder.ID)
	return nil
}

// ToggleParticipantFollow follows the participant if not yet followed,
// otherwise unfollows. Returns the resulting followed state. Following
// a private participant also widens the user's privacy context, so the
// user cache must be flushed either way.
func (s *Service) ToggleParticipantFollow(ctx context.Context, userID, participantID int64) (bool, error) {
	if userID == 0 {
		return false, fmt.Errorf("toggle follow: %w", domain.ErrUnauthorized)
	}

	var followed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.participants.Follow(ctx, userID, participantID)
		if err != nil {
			return err
		}
		if created {
			followed = true
			return nil
		}
		_, err = s.participants.Unfollow(ctx, userID, participantID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("toggle follow: %w", err)
	}

	s.invalidate(userID, domain.EntityParticipant, participantID)

	s.log.Info("participant follow toggled",
		slog.Int64("user_id", userID),
		slog.Int64("participant_id", participantID),
		slog.Bool("followed", followed),
	)
	return followed, nil
}

func (s *Service) resolveFolder(ctx context.Context, userID, folderID int64) (domain.Folder, error) {
	if folderID == 0 {
		return s.folders.GetDefault(ctx, userID)
	}
	return s.folders.GetByID(ctx, userID, folderID)
}

// invalidate evicts cache entries after a committed write. Eviction is
// synchronous: the mutation does not report success until queries
// depending on the touched entity type or the user can no longer hit
// stale payloads.
func (s *Service) invalidate(userID int64, entityType domain.EntityType, entityID int64) {
	s.cache.InvalidateEntity(entityType, entityID)
	s.cache.InvalidateUser(userID)
}

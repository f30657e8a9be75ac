package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/example/workspace-chat/domain/chat"
)

// DefaultHistoryLimit is used when a history request gives no limit.
const DefaultHistoryLimit = 50

// MaxHistoryLimit bounds a single history query.
const MaxHistoryLimit = 100

// Store persists chat and private messages with GORM. It is the concrete
// MessageStore/HistorySource collaborator the realtime subsystem consumes.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the message tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&domain.Message{}, &domain.PrivateMessage{})
}

// InsertChatMessage persists a room message. An empty room defaults to the
// general room.
func (s *Store) InsertChatMessage(ctx context.Context, author, body, room string) error {
	_, err := s.insertChatMessage(ctx, author, body, room)
	return err
}

// CreateChatMessage persists a room message and returns the stored record.
func (s *Store) CreateChatMessage(ctx context.Context, author, body, room string) (*domain.Message, error) {
	return s.insertChatMessage(ctx, author, body, room)
}

func (s *Store) insertChatMessage(ctx context.Context, author, body, room string) (*domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	msg := &domain.Message{
		ID:     uuid.New().String(),
		Author: author,
		Body:   body,
		Room:   room,
		SentAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg, nil
}

// InsertPrivateMessage persists a direct message with the read flag unset.
func (s *Store) InsertPrivateMessage(ctx context.Context, sender, receiver, body string) error {
	_, err := s.CreatePrivateMessage(ctx, sender, receiver, body)
	return err
}

// CreatePrivateMessage persists a direct message and returns the stored
// record.
func (s *Store) CreatePrivateMessage(ctx context.Context, sender, receiver, body string) (*domain.PrivateMessage, error) {
	msg := &domain.PrivateMessage{
		ID:       uuid.New().String(),
		Sender:   sender,
		Receiver: receiver,
		Body:     body,
		SentAt:   time.Now().UTC(),
		Read:     false,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to insert private message: %w", err)
	}
	return msg, nil
}

// RecentMessages returns the last limit messages of a room in ascending
// timestamp order, oldest first. Limit falls back to DefaultHistoryLimit and
// is capped at MaxHistoryLimit.
func (s *Store) RecentMessages(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	// Fetch the newest limit rows, then flip to chronological order.
	var messages []domain.Message
	err := s.db.WithContext(ctx).
		Where("room = ?", room).
		Order("sent_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// PrivateMessagesBetween returns the conversation between two users in
// ascending timestamp order.
func (s *Store) PrivateMessagesBetween(ctx context.Context, userA, userB string, limit int) ([]domain.PrivateMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var messages []domain.PrivateMessage
	err := s.db.WithContext(ctx).
		Where("(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
			userA, userB, userB, userA).
		Order("sent_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query private messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

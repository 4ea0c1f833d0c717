package sessions

import (
	"context"
	"sync"
	"time"

	"kvitka-bot/internal/stories/customers"
)

type CustomerSource interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*customers.Customer, error)
}

// Store держит сессии в памяти, ключ - Telegram ID.
type Store struct {
	mu        sync.RWMutex
	sessions  map[int64]*Session
	customers CustomerSource
	now       func() time.Time
}

func NewStore(customers CustomerSource) *Store {
	return &Store{
		sessions:  make(map[int64]*Session),
		customers: customers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get возвращает сессию, если она есть.
func (s *Store) Get(telegramID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[telegramID]
	return session, ok
}

// GetOrCreate возвращает сессию или создаёт новую. Для зарегистрированного
// покупателя новая сессия начинается с меню с восстановленным языком и типом,
// для незнакомого - с выбора языка.
func (s *Store) GetOrCreate(ctx context.Context, telegramID int64) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[telegramID]
	s.mu.RUnlock()
	if ok {
		session.LastInteraction = s.now()
		return session, nil
	}

	session = &Session{
		TelegramID:      telegramID,
		Step:            StepLanguage,
		Favorites:       make(map[int64]bool),
		LastInteraction: s.now(),
	}

	customer, err := s.customers.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		session.CustomerID = customer.ID
		session.Language = customer.Language
		session.City = customer.City
		session.CustomerType = customer.CustomerType
		session.Step = StepMenu
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Гонка с параллельным апдейтом того же чата: оставляем уже созданную.
	if existing, ok := s.sessions[telegramID]; ok {
		return existing, nil
	}
	s.sessions[telegramID] = session

	return session, nil
}

// Drop удаляет сессию.
func (s *Store) Drop(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, telegramID)
}

// Sweep удаляет сессии без активности дольше maxAge, возвращает число удалённых.
func (s *Store) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, session := range s.sessions {
		if session.LastInteraction.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed
}

// Len возвращает число активных сессий.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

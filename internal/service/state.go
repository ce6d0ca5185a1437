package service

import (
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// State is a booking list filter keyword.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// StateStrategy narrows a base query (subject, role and page already set) for one state.
type StateStrategy func(q models.BookingQuery, now time.Time) models.BookingQuery

// StateResolver maps state keywords to booking queries.
type StateResolver struct {
	mu         sync.RWMutex
	strategies map[State]StateStrategy
}

// NewStateResolver returns a resolver with the built-in states registered.
func NewStateResolver() *StateResolver {
	r := &StateResolver{strategies: make(map[State]StateStrategy)}

	r.Register(StateAll, func(q models.BookingQuery, _ time.Time) models.BookingQuery {
		q.Order = startDesc
		return q
	})
	r.Register(StateCurrent, func(q models.BookingQuery, now time.Time) models.BookingQuery {
		q.StartBefore = now
		q.EndAfter = now
		q.Order = []models.SortField{{Column: models.SortByStart}}
		return q
	})
	r.Register(StatePast, func(q models.BookingQuery, now time.Time) models.BookingQuery {
		q.EndBefore = now
		q.Order = startDesc
		return q
	})
	r.Register(StateFuture, func(q models.BookingQuery, now time.Time) models.BookingQuery {
		q.StartAfter = now
		q.Order = startDesc
		return q
	})
	r.Register(StateWaiting, byStatus(models.StatusWaiting))
	r.Register(StateRejected, byStatus(models.StatusRejected))

	return r
}

var startDesc = []models.SortField{{Column: models.SortByStart, Desc: true}}

func byStatus(status models.BookingStatus) StateStrategy {
	return func(q models.BookingQuery, _ time.Time) models.BookingQuery {
		q.Status = status
		q.Order = []models.SortField{{Column: models.SortByStatus, Desc: true}}
		return q
	}
}

// Register adds or replaces the strategy for a state.
func (r *StateResolver) Register(state State, strategy StateStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[state] = strategy
}

// Resolve builds the query for keyword. Keywords are case-sensitive.
func (r *StateResolver) Resolve(keyword string, userID int64, role models.BookingRole, page models.Page, now time.Time) (models.BookingQuery, error) {
	r.mu.RLock()
	strategy, ok := r.strategies[State(keyword)]
	r.mu.RUnlock()
	if !ok {
		return models.BookingQuery{}, domain.UnsupportedStatef("Unknown state: %s", keyword)
	}

	return strategy(models.BookingQuery{Role: role, UserID: userID, Page: page}, now), nil
}

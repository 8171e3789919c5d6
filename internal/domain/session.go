package domain

import "time"

// Session is the explicit per-login context passed to every handler.
// It is created on login, mutated only through SetActiveEvent, and deleted
// wholesale on logout — there is no partial logout state.
type Session struct {
	ID                string    `json:"-"`
	UserID            string    `json:"userId"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	PermittedEventIDs []string  `json:"permittedEventIds"`
	ActiveEventID     string    `json:"activeEventId,omitempty"`
	CreatedAt         time.Time `json:"-"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdministrator
}

// CanAccessEvent reports whether the session may select the given event.
// An empty permitted list means no restriction.
func (s *Session) CanAccessEvent(eventID string) bool {
	if len(s.PermittedEventIDs) == 0 {
		return true
	}
	for _, id := range s.PermittedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

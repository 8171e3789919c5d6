// Package service provides the business logic layer (use cases): session
// and authorization state, sales operations and administration.
package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
	"github.com/jmpinto/eventos-escuteiros/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// AuthService owns the Anonymous → Authenticated transition, the session
// store and the active-event selection.
type AuthService struct {
	gateway  port.TableGateway
	sessions port.SessionStore
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(gateway port.TableGateway, sessions port.SessionStore, secret string, ttl time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:  gateway,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// sessionClaims is the JWT payload carried by the bearer token. The token
// only names the server-side session; all mutable state lives in the store.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Login validates credentials against the remote Utilizadores table and
// creates a session. The remote lookup filters on Email and Ativo; the
// password is verified in-process so stored bcrypt hashes keep working
// alongside legacy plaintext rows.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "Preencha email e password"}
	}
	span.SetAttributes(attribute.String("user.email", req.Email))

	user, err := s.gateway.FindFirst(ctx, domain.TableUsers, map[string]any{
		domain.FieldEmail:  req.Email,
		domain.FieldActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !verifyPassword(user.String(domain.FieldPassword), req.Password) {
		s.logger.Warn("login: invalid credentials", zap.String("email", req.Email))
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	permitted := user.Links(domain.FieldEvents)
	activeEvent, err := s.resolveActiveEvent(ctx, permitted)
	if err != nil {
		return nil, fmt.Errorf("resolve active event: %w", err)
	}

	session := &domain.Session{
		ID:                uuid.NewString(),
		UserID:            user.ID(),
		Name:              user.String(domain.FieldName),
		Role:              user.String(domain.FieldRole),
		PermittedEventIDs: permitted,
		ActiveEventID:     activeEvent,
		CreatedAt:         time.Now(),
	}
	s.sessions.Put(session)

	token, err := s.signSessionToken(session.ID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", session.UserID),
		zap.String("role", session.Role),
		zap.String("active_event", session.ActiveEventID),
	)

	return &domain.LoginResponse{
		Token:             token,
		ExpiresIn:         int(s.ttl.Seconds()),
		UserID:            session.UserID,
		Name:              session.Name,
		Role:              session.Role,
		PermittedEventIDs: permitted,
		ActiveEventID:     activeEvent,
	}, nil
}

// resolveActiveEvent picks the session's initial active event: the first
// permitted event flagged active, then the first globally active event,
// otherwise empty — pages that need an event then refuse to render until
// one is selected.
func (s *AuthService) resolveActiveEvent(ctx context.Context, permitted []string) (string, error) {
	events, err := s.gateway.ReadAll(ctx, domain.TableEvents)
	if err != nil {
		return "", err
	}

	for _, id := range permitted {
		for _, event := range events {
			if event.ID() == id && event.Bool(domain.FieldActive) {
				return id, nil
			}
		}
	}
	for _, event := range events {
		if event.Bool(domain.FieldActive) {
			return event.ID(), nil
		}
	}
	return "", nil
}

// Logout deletes the session. The bearer token becomes useless in the same
// step, so there is no partially-logged-out state.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	s.sessions.Delete(session.ID)
	s.logger.Info("user logged out", zap.String("user_id", session.UserID))
}

// SessionFromToken validates a bearer token and returns the live session
// it names.
func (s *AuthService) SessionFromToken(tokenString string) (*domain.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}

	session, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida ou expirada"}
	}
	return session, nil
}

// SetActiveEvent switches the session's active event. The event must exist,
// be flagged active and belong to the session's permitted set.
func (s *AuthService) SetActiveEvent(ctx context.Context, session *domain.Session, eventID string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.SetActiveEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.id", eventID))

	if eventID == "" {
		return &domain.ErrValidation{Field: "eventId", Message: "required"}
	}
	if !session.CanAccessEvent(eventID) {
		return &domain.ErrForbidden{Action: "select event " + eventID}
	}

	events, err := s.gateway.ReadAll(ctx, domain.TableEvents)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	for _, event := range events {
		if event.ID() == eventID {
			if !event.Bool(domain.FieldActive) {
				return &domain.ErrValidation{Field: "eventId", Message: "o evento não está ativo"}
			}
			session.ActiveEventID = eventID
			s.sessions.Put(session)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "evento", ID: eventID}
}

// ListSelectableEvents returns the active events the session may choose as
// its active event — the home-screen selector.
func (s *AuthService) ListSelectableEvents(ctx context.Context, session *domain.Session) ([]domain.Event, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ListSelectableEvents")
	defer span.End()

	records, err := s.gateway.ReadAll(ctx, domain.TableEvents)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(records))
	for _, r := range records {
		if !r.Bool(domain.FieldActive) {
			continue
		}
		if !session.CanAccessEvent(r.ID()) {
			continue
		}
		events = append(events, domain.EventFromRecord(r))
	}
	return events, nil
}

func (s *AuthService) signSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "eventos-escuteiros",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// verifyPassword compares the stored password with the submitted one.
// Values written by this application are bcrypt hashes; rows predating it
// hold the plain password and are compared in constant time.
func verifyPassword(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// HashPassword prepares a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

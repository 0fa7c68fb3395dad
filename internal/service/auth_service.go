// Package service implements the account and session operations behind the
// HTTP handlers. Operations return domain errors as values; the transport
// boundary maps them to responses. Collaborators (user store, session
// cache, mail publisher) are injected as interfaces so the state machine
// can be exercised without MySQL, Redis or a broker.
package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smarthostel/backend/internal/apperr"
	"github.com/smarthostel/backend/internal/config"
	"github.com/smarthostel/backend/internal/model"
	"github.com/smarthostel/backend/internal/queue"
	"github.com/smarthostel/backend/internal/repository"
	"github.com/smarthostel/backend/internal/session"
	"github.com/smarthostel/backend/internal/utils"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// UserStore is the credential store consumed by the service. Implemented
// by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id uint64) (model.User, error)
	Activate(ctx context.Context, id uint64) (bool, error)
}

// SessionStore is the TTL-backed cache holding live session records.
// Implemented by session.Store.
type SessionStore interface {
	Save(ctx context.Context, userID uint64, snap model.Snapshot, ttl time.Duration) error
	Get(ctx context.Context, userID uint64) (model.Snapshot, error)
	Delete(ctx context.Context, userID uint64) error
}

// MailPublisher dispatches activation mail events to the broker.
type MailPublisher interface {
	PublishActivationEmail(ctx context.Context, ev queue.ActivationEmailEvent) error
}

// AuthService bundles the collaborators for the auth operations.
type AuthService struct {
	cfg      config.Config
	users    UserStore
	sessions SessionStore
	mail     MailPublisher
}

func NewAuthService(cfg config.Config, users UserStore, sessions SessionStore, mail MailPublisher) *AuthService {
	return &AuthService{cfg: cfg, users: users, sessions: sessions, mail: mail}
}

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	AvatarURL string
}

// RegisterResult is returned on successful registration. The activation
// token goes back to the caller; the matching code travels by mail.
type RegisterResult struct {
	Email           string
	ActivationToken string
}

// SessionResult is the outcome of any operation that establishes or renews
// a session: the sanitized identity plus a fresh token pair.
type SessionResult struct {
	User    model.Snapshot
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// Register validates the input, stores an inactive identity, and issues an
// activation token bound to a fresh 4-digit code. The unique email index is
// re-checked at insert time, so the loser of a concurrent registration race
// gets DuplicateEmail no matter what the earlier existence check saw.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	if err := validateRegistration(in); err != nil {
		return RegisterResult{}, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return RegisterResult{}, apperr.Infrastructure(err)
	}

	id, err := s.users.Create(ctx, model.User{
		Name:                strings.TrimSpace(in.Name),
		Email:               email,
		Phone:               strings.TrimSpace(in.Phone),
		PasswordHash:        hash,
		AvatarURL:           in.AvatarURL,
		Role:                model.RoleUser,
		IsActive:            false,
		HostelRequestStatus: model.HostelRequestNone,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return RegisterResult{}, apperr.ErrDuplicateEmail
		}
		return RegisterResult{}, apperr.Infrastructure(err)
	}

	code, err := utils.NewActivationCode()
	if err != nil {
		return RegisterResult{}, apperr.Infrastructure(err)
	}
	token, err := utils.SignActivationToken(s.cfg.ActivationSecret, id, code,
		time.Duration(s.cfg.ActivationTTLMin)*time.Minute)
	if err != nil {
		return RegisterResult{}, apperr.Infrastructure(err)
	}

	// Mail dispatch is fire-and-forget: a broker outage must not fail the
	// registration that already committed.
	ev := queue.ActivationEmailEvent{
		EventID:     uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Email:       email,
		Code:        code,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.mail.PublishActivationEmail(ctx, ev); err != nil {
		log.Printf("auth: activation mail publish failed for %s: %v", email, err)
	}

	return RegisterResult{Email: email, ActivationToken: token.Token}, nil
}

// Activate consumes an activation token and its out-of-band code. The code
// comparison runs only against the code embedded in a verified, unexpired
// token; signature and expiry failures are rejected before the code is
// even looked at.
func (s *AuthService) Activate(ctx context.Context, token, code string) error {
	if token == "" || code == "" {
		return apperr.New(400, "Invalid activation request")
	}
	uid, embedded, err := utils.ParseActivationToken(s.cfg.ActivationSecret, token)
	if err != nil {
		return apperr.ErrTokenInvalid
	}
	if embedded != code {
		return apperr.ErrCodeMismatch
	}

	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrTokenInvalid
		}
		return apperr.Infrastructure(err)
	}
	if u.IsActive {
		return apperr.ErrAlreadyActive
	}
	flipped, err := s.users.Activate(ctx, uid)
	if err != nil {
		return apperr.Infrastructure(err)
	}
	if !flipped {
		// Someone else activated between the read and the guarded update.
		return apperr.ErrAlreadyActive
	}
	return nil
}

// Login exchanges credentials for a session. A missing account, a wrong
// password, a social account with no digest, and a not-yet-activated
// account all produce the same InvalidCredentials error so the response
// never reveals which check failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (SessionResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return SessionResult{}, apperr.New(400, "Please enter email and password")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return SessionResult{}, apperr.ErrInvalidCredentials
		}
		return SessionResult{}, apperr.Infrastructure(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return SessionResult{}, apperr.ErrInvalidCredentials
	}
	if !u.IsActive {
		return SessionResult{}, apperr.ErrInvalidCredentials
	}
	return s.issueSession(ctx, u.Sanitize())
}

// SocialAuth finds or creates an identity for a provider-verified email and
// issues a session. Accounts created here carry no password digest, so
// password login for them is permanently refused by Login's empty-digest
// guard.
func (s *AuthService) SocialAuth(ctx context.Context, name, email, avatarURL string) (SessionResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailPattern.MatchString(email) {
		return SessionResult{}, apperr.New(400, "Please enter a valid email")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		id, cerr := s.users.Create(ctx, model.User{
			Name:                strings.TrimSpace(name),
			Email:               email,
			AvatarPublicID:      "social_auth_avatar_" + uuid.NewString(),
			AvatarURL:           avatarURL,
			Role:                model.RoleUser,
			IsActive:            true, // the provider vouched for the address
			HostelRequestStatus: model.HostelRequestNone,
		})
		if errors.Is(cerr, repository.ErrEmailExists) {
			// Lost a create race; the row exists now.
			u, err = s.users.FindByEmail(ctx, email)
			if err != nil {
				return SessionResult{}, apperr.Infrastructure(err)
			}
			return s.issueSession(ctx, u.Sanitize())
		}
		if cerr != nil {
			return SessionResult{}, apperr.Infrastructure(cerr)
		}
		u, err = s.users.FindByID(ctx, id)
		if err != nil {
			return SessionResult{}, apperr.Infrastructure(err)
		}
		return s.issueSession(ctx, u.Sanitize())
	}
	if err != nil {
		return SessionResult{}, apperr.Infrastructure(err)
	}
	return s.issueSession(ctx, u.Sanitize())
}

// Logout deletes the session record. The cookies are cleared at the
// transport layer; logging out an already-dead session is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// Refresh validates a refresh token against the session cache and rotates
// the pair. The cache entry is the liveness authority: its absence means
// logged out even while the token is still cryptographically valid.
// Rotation rewrites the entry under the same id with a fresh TTL.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (SessionResult, error) {
	if refreshToken == "" {
		return SessionResult{}, apperr.ErrMissingToken
	}
	uid, err := utils.ParseSessionToken(s.cfg.RefreshSecret, refreshToken)
	if err != nil {
		return SessionResult{}, apperr.ErrRefreshInvalid
	}
	snap, err := s.sessions.Get(ctx, uid)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession):
			return SessionResult{}, apperr.ErrSessionExpired
		case errors.Is(err, session.ErrCorrupt):
			return SessionResult{}, apperr.ErrCorruptSession
		default:
			return SessionResult{}, apperr.Infrastructure(err)
		}
	}
	return s.issueSession(ctx, snap)
}

// issueSession mints an access/refresh pair for the identity and writes
// the snapshot into the session cache with a full TTL.
func (s *AuthService) issueSession(ctx context.Context, snap model.Snapshot) (SessionResult, error) {
	access, err := utils.SignSessionToken(s.cfg.AccessSecret, snap.ID,
		time.Duration(s.cfg.AccessTTLHours)*time.Hour)
	if err != nil {
		return SessionResult{}, apperr.Infrastructure(err)
	}
	refresh, err := utils.SignSessionToken(s.cfg.RefreshSecret, snap.ID,
		time.Duration(s.cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		return SessionResult{}, apperr.Infrastructure(err)
	}
	ttl := time.Duration(s.cfg.SessionTTLSec) * time.Second
	if err := s.sessions.Save(ctx, snap.ID, snap, ttl); err != nil {
		return SessionResult{}, apperr.Infrastructure(err)
	}
	return SessionResult{User: snap, Access: access, Refresh: refresh}, nil
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.New(400, "Please enter your name")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !emailPattern.MatchString(email) {
		return apperr.New(400, "Please enter a valid email")
	}
	if !phonePattern.MatchString(strings.TrimSpace(in.Phone)) {
		return apperr.New(400, "Please enter a valid phone number")
	}
	if len(in.Password) < 6 {
		return apperr.New(400, "Password must be atleast 6 characters")
	}
	return nil
}

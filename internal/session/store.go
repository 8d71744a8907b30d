package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
)

// CredentialRepository persists one credential per session key. Absence of a
// row means the session is unauthenticated at boot.
type CredentialRepository interface {
	Save(sessionKey string, ciphertext []byte) error
	Get(sessionKey string) ([]byte, error)
	Delete(sessionKey string) error
}

// StoreAPI is the session store surface consumed by guards and handlers.
type StoreAPI interface {
	Current(sessionKey string) Session
	LoginWithCredential(ctx context.Context, sessionKey, identityToken string) (Session, error)
	RefreshCurrentUser(ctx context.Context, sessionKey string) (Session, error)
	Logout(ctx context.Context, sessionKey string)
}

// Store owns all session state. Every mutation goes through its methods under
// one lock, so components reading sessions never observe partial writes.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session

	repo   CredentialRepository
	client backend.ClientAPI
	secret [32]byte
	logger *slog.Logger
}

func NewStore(repo CredentialRepository, client backend.ClientAPI, secret string, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]Session),
		repo:     repo,
		client:   client,
		secret:   sha256.Sum256([]byte(secret)),
		logger:   logger,
	}
}

// Current returns a copy of the session for a key; the zero Session when the
// key is unknown.
func (s *Store) Current(sessionKey string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionKey]
}

// LoginWithCredential exchanges a Google identity assertion for an
// application credential and profile. On success the whole session is
// replaced and the credential persisted; on failure the session is left
// untouched and the error surfaces as a transient notice upstream.
func (s *Store) LoginWithCredential(ctx context.Context, sessionKey, identityToken string) (Session, error) {
	googleUser, err := DecodeIdentityToken(identityToken)
	if err != nil {
		s.logger.Warn("login rejected: malformed identity assertion", "error", err)
		return s.Current(sessionKey), err
	}

	authResp, err := s.client.ExchangeIdentity(ctx, googleUser)
	if err != nil {
		s.logger.Error("identity exchange failed", "email", googleUser.Email, "error", err)
		return s.Current(sessionKey), err
	}

	profile := profileFromExchange(authResp.User)
	next := Session{Credential: authResp.Token, User: profile}

	s.mu.Lock()
	s.sessions[sessionKey] = next
	s.mu.Unlock()

	if err := s.repo.Save(sessionKey, s.seal(authResp.Token)); err != nil {
		// Persistence failure degrades to a memory-only session; the user is
		// logged in now and simply won't survive a restart.
		s.logger.Error("failed to persist credential", "error", err)
	}

	s.assertInvariant(next)
	s.logger.Info("user logged in", "user_id", profile.ID, "role", profile.Role)

	return next, nil
}

// RefreshCurrentUser rebuilds the session from a persisted credential. It
// runs once per boot path and never retries: an invalid credential is
// cleared immediately and the session stays unauthenticated.
func (s *Store) RefreshCurrentUser(ctx context.Context, sessionKey string) (Session, error) {
	current := s.Current(sessionKey)
	if current.IsAuthenticated() {
		return current, nil
	}

	ciphertext, err := s.repo.Get(sessionKey)
	if err != nil {
		if errors.Is(err, ErrNoPersistedCredential) {
			return current, ErrNoPersistedCredential
		}
		s.logger.Error("failed to read persisted credential", "error", err)
		return current, err
	}

	credential, err := s.open(ciphertext)
	if err != nil {
		s.logger.Warn("discarding undecryptable persisted credential")
		_ = s.repo.Delete(sessionKey)
		return current, ErrNoPersistedCredential
	}

	user, err := s.client.CurrentUser(ctx, credential)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeUnauthorized {
			s.logger.Info("persisted credential expired, clearing")
			if derr := s.repo.Delete(sessionKey); derr != nil {
				s.logger.Error("failed to clear stale credential", "error", derr)
			}
		}
		return current, err
	}

	next := Session{Credential: credential, User: profileFromExchange(*user)}

	s.mu.Lock()
	s.sessions[sessionKey] = next
	s.mu.Unlock()

	s.assertInvariant(next)

	return next, nil
}

// Logout clears the in-memory session and the persisted credential.
// Idempotent: logging out an unknown session is a no-op.
func (s *Store) Logout(ctx context.Context, sessionKey string) {
	s.mu.Lock()
	delete(s.sessions, sessionKey)
	s.mu.Unlock()

	if err := s.repo.Delete(sessionKey); err != nil {
		s.logger.Error("failed to delete persisted credential", "error", err)
	}

	s.assertInvariant(s.Current(sessionKey))
}

func profileFromExchange(user backend.ExchangedUser) *UserProfile {
	return &UserProfile{
		ID:            user.GoogleID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          ParseRole(user.Role),
		DepartmentIDs: user.DepartmentIDs,
	}
}

// assertInvariant checks the authenticated-iff-credential-and-user invariant
// after each mutation. A violation is a programming error worth a loud log,
// never a panic.
func (s *Store) assertInvariant(sess Session) {
	bothPresent := sess.Credential != "" && sess.User != nil
	bothAbsent := sess.Credential == "" && sess.User == nil
	if !bothPresent && !bothAbsent {
		s.logger.Error("session invariant violated",
			"has_credential", sess.Credential != "",
			"has_user", sess.User != nil)
	}
}

func (s *Store) seal(credential string) []byte {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		// rand.Reader failures are unrecoverable process-level problems.
		panic(err)
	}
	return secretbox.Seal(nonce[:], []byte(credential), &nonce, &s.secret)
}

func (s *Store) open(ciphertext []byte) (string, error) {
	if len(ciphertext) < 24 {
		return "", errors.New("ciphertext too short")
	}
	var nonce [24]byte
	copy(nonce[:], ciphertext[:24])
	plaintext, ok := secretbox.Open(nil, ciphertext[24:], &nonce, &s.secret)
	if !ok {
		return "", errors.New("credential decryption failed")
	}
	return string(plaintext), nil
}

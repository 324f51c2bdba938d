package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Authenticator is the account backend: credential checks plus one JSON
// document per account.
type Authenticator interface {
	CreateAccount(ctx context.Context, email, password string) (uid string, err error)
	SignIn(ctx context.Context, email, password string) (uid string, err error)
	WriteDocument(ctx context.Context, uid string, doc []byte) error
	ReadDocument(ctx context.Context, uid string) ([]byte, error)
}

var ErrNotSignedIn = errors.New("not signed in")

type SignUpRequest struct {
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Birthday        string `validate:"required,datetime=2006-01-02"`
	AgreeTerms      bool   `validate:"required"`
}

type signInRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// AccountStore holds the signed-in user, mirrored under AccountKey. auth may
// be nil, in which case accounts are kept on this device only.
type AccountStore struct {
	mu      sync.RWMutex
	kv      KV
	auth    Authenticator
	log     *zap.Logger
	current *Account
}

func NewAccountStore(kv KV, auth Authenticator, log *zap.Logger) *AccountStore {
	return &AccountStore{kv: kv, auth: auth, log: log.Named("account")}
}

// Load restores the last signed-in user. Errors are logged and treated as
// signed out.
func (s *AccountStore) Load() (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	raw, found, err := s.kv.Get(AccountKey)
	if err != nil {
		s.log.Warn("read failed", zap.Error(err))
		return Account{}, false
	}
	if !found {
		return Account{}, false
	}
	var a Account
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		s.log.Warn("decode failed", zap.Error(err))
		return Account{}, false
	}
	s.current = &a
	return a, true
}

func (s *AccountStore) Current() (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Account{}, false
	}
	return *s.current, true
}

// Set replaces the current user and persists it.
func (s *AccountStore) Set(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(a)
}

// Clear signs out.
func (s *AccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.kv.Remove(AccountKey); err != nil {
		s.log.Warn("remove failed", zap.Error(err))
	}
}

// SetProfilePicture stores a data URL image on the current account.
func (s *AccountStore) SetProfilePicture(ctx context.Context, dataURL string) error {
	if dataURL != "" && !strings.HasPrefix(dataURL, "data:image/") {
		return &ValidationError{"profile picture must be an image data URL"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNotSignedIn
	}
	a := *s.current
	a.ProfilePicture = dataURL
	s.setLocked(a)
	s.writeDocument(ctx, a)
	return nil
}

// SignUp validates req, creates the account with the authenticator when
// there is one, and makes it the current user.
func (s *AccountStore) SignUp(ctx context.Context, req SignUpRequest) (Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Birthday = strings.TrimSpace(req.Birthday)
	if err := check(req); err != nil {
		return Account{}, err
	}

	a := Account{Username: req.Username, Email: req.Email, Birthday: req.Birthday}
	if s.auth != nil {
		uid, err := s.auth.CreateAccount(ctx, req.Email, req.Password)
		if err != nil {
			return Account{}, fmt.Errorf("create account: %w", err)
		}
		a.UID = uid
		s.writeDocument(ctx, a)
	}

	s.mu.Lock()
	s.setLocked(a)
	s.mu.Unlock()
	s.log.Info("signed up", zap.String("uid", a.UID), zap.String("username", a.Username))
	return a, nil
}

// SignIn checks the credentials and loads the account document. Without an
// authenticator the username is taken from the email address.
func (s *AccountStore) SignIn(ctx context.Context, email, password string) (Account, error) {
	email = strings.TrimSpace(email)
	if err := check(signInRequest{Email: email, Password: password}); err != nil {
		return Account{}, err
	}

	a := Account{Username: usernameFromEmail(email), Email: email}
	if s.auth != nil {
		uid, err := s.auth.SignIn(ctx, email, password)
		if err != nil {
			return Account{}, fmt.Errorf("sign in: %w", err)
		}
		a.UID = uid
		doc, err := s.auth.ReadDocument(ctx, uid)
		if err != nil {
			s.log.Warn("read account document failed", zap.String("uid", uid), zap.Error(err))
		} else if len(doc) > 0 {
			var stored Account
			if err := json.Unmarshal(doc, &stored); err != nil {
				s.log.Warn("decode account document failed", zap.String("uid", uid), zap.Error(err))
			} else if stored.Email != "" {
				a = stored
				a.UID = uid
			}
		}
	}

	s.mu.Lock()
	s.setLocked(a)
	s.mu.Unlock()
	s.log.Info("signed in", zap.String("uid", a.UID), zap.String("username", a.Username))
	return a, nil
}

func (s *AccountStore) setLocked(a Account) {
	s.current = &a
	data, err := json.Marshal(a)
	if err != nil {
		s.log.Error("encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(AccountKey, string(data)); err != nil {
		s.log.Warn("write failed", zap.Error(err))
	}
}

func (s *AccountStore) writeDocument(ctx context.Context, a Account) {
	if s.auth == nil || a.UID == "" {
		return
	}
	doc, err := json.Marshal(a)
	if err != nil {
		s.log.Error("encode account document failed", zap.Error(err))
		return
	}
	if err := s.auth.WriteDocument(ctx, a.UID, doc); err != nil {
		s.log.Warn("write account document failed", zap.String("uid", a.UID), zap.Error(err))
	}
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

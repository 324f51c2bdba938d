// Package auth is the account backend used for sign-up and sign-in. Local
// keeps credentials and account documents in the application database.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrWrongPassword = errors.New("wrong password")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailInUse    = errors.New("email already in use")
	ErrWeakPassword  = errors.New("weak password")
)

// Message turns an error from this package into text for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, ErrWrongPassword):
		return "Wrong password"
	case errors.Is(err, ErrUserNotFound):
		return "No account found with this email"
	case errors.Is(err, ErrEmailInUse):
		return "Email already in use"
	case errors.Is(err, ErrWeakPassword):
		return "Password should be at least 6 characters"
	}
	return "Something went wrong, please try again"
}

// Local authenticates against the accounts table.
type Local struct {
	db       *sql.DB
	log      *zap.Logger
	validate *validator.Validate
	cost     int
}

func NewLocal(db *sql.DB, log *zap.Logger) *Local {
	return &Local{
		db:       db,
		log:      log.Named("auth"),
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
}

func (l *Local) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := l.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return "", ErrWeakPassword
	}

	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if exists > 0 {
		return "", ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.New().String()
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO accounts (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		uid, email, string(hash), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("insert account: %w", err)
	}
	l.log.Info("account created", zap.String("uid", uid))
	return uid, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := l.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}

	var uid, hash string
	err := l.db.QueryRowContext(ctx,
		`SELECT uid, password_hash FROM accounts WHERE email = ?`, email,
	).Scan(&uid, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		l.log.Warn("sign in with wrong password", zap.String("uid", uid))
		return "", ErrWrongPassword
	}
	return uid, nil
}

// WriteDocument replaces the JSON document stored for uid.
func (l *Local) WriteDocument(ctx context.Context, uid string, doc []byte) error {
	res, err := l.db.ExecContext(ctx, `UPDATE accounts SET document = ? WHERE uid = ?`, string(doc), uid)
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (l *Local) ReadDocument(ctx context.Context, uid string) ([]byte, error) {
	var doc string
	err := l.db.QueryRowContext(ctx, `SELECT document FROM accounts WHERE uid = ?`, uid).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return []byte(doc), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

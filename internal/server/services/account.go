// Package services contains server-side business logic. AccountService owns
// the account lifecycle: registration, confirmation, login, password reset,
// profile lookups and administrative updates.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/dmitrijs2005/usuarios/internal/dbx"
	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/dmitrijs2005/usuarios/internal/server/auth"
	"github.com/dmitrijs2005/usuarios/internal/server/config"
	"github.com/dmitrijs2005/usuarios/internal/server/models"
	"github.com/dmitrijs2005/usuarios/internal/server/notify"
	"github.com/dmitrijs2005/usuarios/internal/server/passwords"
	"github.com/dmitrijs2005/usuarios/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/usuarios/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Notifier delivers the emails that carry pending tokens.
type Notifier interface {
	SendConfirmation(ctx context.Context, r notify.Recipient) error
	SendPasswordReset(ctx context.Context, r notify.Recipient) error
}

// Session is the result of a successful Authenticate.
type Session struct {
	Account models.AccountSummary
	Token   string
}

// AccountUpdate carries the fields an administrator may change. Nil or empty
// fields keep their current value.
type AccountUpdate struct {
	Nombre   *string
	Email    *string
	Password *string
}

type AccountService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	hasher              *passwords.Hasher
	notifier            Notifier
	log                 logging.Logger
	jwtSecret           []byte
	sessionValidity     time.Duration
	pendingTokenSize    int
	notificationTimeout time.Duration

	wg sync.WaitGroup
}

// NewAccountService constructs an AccountService. notifier may be nil, in
// which case no emails are sent.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, notifier Notifier, log logging.Logger, cfg *config.Config) *AccountService {
	tokenSize := cfg.PendingTokenSize
	if tokenSize <= 0 {
		tokenSize = common.PendingTokenSize
	}
	return &AccountService{
		db:                  db,
		repomanager:         m,
		hasher:              passwords.NewHasher(cfg.BcryptCost),
		notifier:            notifier,
		log:                 log.With("module", "accounts"),
		jwtSecret:           []byte(cfg.SecretKey),
		sessionValidity:     cfg.SessionTokenValidityDuration,
		pendingTokenSize:    tokenSize,
		notificationTimeout: cfg.NotificationTimeout,
	}
}

// Register creates an unconfirmed account and emails its confirmation link.
// A taken email yields common.ErrorConflict.
func (s *AccountService) Register(ctx context.Context, nombre, email, password string) (*models.AccountSummary, error) {
	nombre = strings.TrimSpace(nombre)
	email = accounts.NormalizeEmail(email)
	if nombre == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: nombre, email and password are required", common.ErrorValidation)
	}

	hash, err := s.hashPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	token, err := s.newPendingToken(ctx)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:       uuid.NewString(),
		Nombre:   nombre,
		Email:    email,
		Password: hash,
		Token:    token,
	}

	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		return s.repomanager.Accounts(conn).Create(ctx, account)
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return nil, s.internal(ctx, "create account", err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	s.dispatch(ctx, "confirmation", recipient(account), s.sendConfirmation)

	summary := account.Summary()
	return &summary, nil
}

// Authenticate verifies the credentials and issues a session token. Unknown
// emails yield common.ErrorNotFound, wrong passwords common.ErrorUnauthorized.
// Unconfirmed accounts may log in.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = accounts.NormalizeEmail(email)

	var account *models.Account
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		account, err = s.repomanager.Accounts(conn).GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "load account", err)
	}

	if err := s.hasher.Compare(password, account.Password); err != nil {
		if errors.Is(err, passwords.ErrMismatch) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.internal(ctx, "compare password", err)
	}

	token, err := auth.GenerateToken(account.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, s.internal(ctx, "sign session token", err)
	}

	return &Session{Account: account.Summary(), Token: token}, nil
}

// ConfirmAccount consumes a confirmation token.
func (s *AccountService) ConfirmAccount(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorNotFound
	}

	var id string
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		id, err = s.repomanager.Accounts(conn).Confirm(ctx, token)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "confirm account", err)
	}

	s.log.Info(ctx, "account confirmed", "account_id", id)
	return nil
}

// RequestPasswordReset stores a fresh pending token, replacing any previous
// one, and emails the reset link.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = accounts.NormalizeEmail(email)
	if email == "" {
		return common.ErrorNotFound
	}

	token, err := s.newPendingToken(ctx)
	if err != nil {
		return err
	}

	var account *models.Account
	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		account, err = s.repomanager.Accounts(conn).SetToken(ctx, email, token)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "store reset token", err)
	}

	s.dispatch(ctx, "password_reset", recipient(account), s.sendPasswordReset)
	return nil
}

// CheckResetToken reports whether some account holds token. It never
// changes state.
func (s *AccountService) CheckResetToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		_, err := s.repomanager.Accounts(conn).GetByToken(ctx, token)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, s.internal(ctx, "check token", err)
	}
	return true, nil
}

// ResetPassword replaces the password of the account holding token and
// clears the token. The token is consumed at most once.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return common.ErrorNotFound
	}

	var id string
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		repo := s.repomanager.Accounts(conn)
		if _, err := repo.GetByToken(ctx, token); err != nil {
			return err
		}

		hash, err := s.hashPassword(ctx, password)
		if err != nil {
			return err
		}

		id, err = repo.ResetPassword(ctx, token, hash)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInternal):
			return err
		}
		return s.internal(ctx, "reset password", err)
	}

	s.log.Info(ctx, "password reset", "account_id", id)
	return nil
}

// UpdateAccount applies the supplied fields to the account with id. A new
// email already used by another account yields common.ErrorConflict.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, upd AccountUpdate) error {
	var changes models.AccountChanges

	if upd.Nombre != nil {
		if v := strings.TrimSpace(*upd.Nombre); v != "" {
			changes.Nombre = &v
		}
	}
	if upd.Email != nil {
		if v := accounts.NormalizeEmail(*upd.Email); v != "" {
			changes.Email = &v
		}
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			return err
		}

		if upd.Password != nil && *upd.Password != "" {
			hash, err := s.hashPassword(ctx, *upd.Password)
			if err != nil {
				return err
			}
			changes.Password = &hash
		}

		return repo.Update(ctx, id, changes)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInternal):
			return err
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrorConflict):
			return fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return s.internal(ctx, "update account", err)
	}

	s.log.Info(ctx, "account updated", "account_id", id)
	return nil
}

// GetProfile returns the public view of the account with id.
func (s *AccountService) GetProfile(ctx context.Context, id string) (*models.AccountSummary, error) {
	var account *models.Account
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		account, err = s.repomanager.Accounts(conn).GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "load profile", err)
	}

	summary := account.Summary()
	return &summary, nil
}

// ListAccounts returns every account, oldest first, without secrets.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.AccountSummary, error) {
	var list []*models.Account
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		list, err = s.repomanager.Accounts(conn).List(ctx)
		return err
	})
	if err != nil {
		return nil, s.internal(ctx, "list accounts", err)
	}

	result := make([]models.AccountSummary, 0, len(list))
	for _, a := range list {
		result = append(result, a.Summary())
	}
	return result, nil
}

// Ping checks database reachability.
func (s *AccountService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Wait blocks until every in-flight notification has finished.
func (s *AccountService) Wait() {
	s.wg.Wait()
}

func (s *AccountService) hashPassword(ctx context.Context, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return "", err
		}
		return "", s.internal(ctx, "hash password", err)
	}
	return hash, nil
}

func (s *AccountService) newPendingToken(ctx context.Context) (string, error) {
	token, err := common.MakeRandHexString(s.pendingTokenSize)
	if err != nil {
		return "", s.internal(ctx, "generate token", err)
	}
	return token, nil
}

// internal logs err and hides it behind common.ErrorInternal.
func (s *AccountService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, op)
}

func recipient(a *models.Account) notify.Recipient {
	return notify.Recipient{Nombre: a.Nombre, Email: a.Email, Token: a.Token}
}

func (s *AccountService) sendConfirmation(ctx context.Context, r notify.Recipient) error {
	return s.notifier.SendConfirmation(ctx, r)
}

func (s *AccountService) sendPasswordReset(ctx context.Context, r notify.Recipient) error {
	return s.notifier.SendPasswordReset(ctx, r)
}

// dispatch sends a notification in the background. It outlives the request
// context but is bounded by the notification timeout. Failures are logged
// only; the triggering operation has already succeeded.
func (s *AccountService) dispatch(ctx context.Context, kind string, r notify.Recipient, send func(context.Context, notify.Recipient) error) {
	if s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := context.WithoutCancel(ctx)
		if s.notificationTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.notificationTimeout)
			defer cancel()
		}

		if err := send(ctx, r); err != nil {
			s.log.Error(ctx, "notification failed", "kind", kind, "error", err)
			return
		}
		s.log.Debug(ctx, "notification sent", "kind", kind)
	}()
}

package lists

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/logger"
	"github.com/smileynet/storefront/internal/toast"
	"github.com/smileynet/storefront/internal/token"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Session signs the admin in and out.
type Session struct {
	auth     Authenticator
	tokens   token.Store
	notify   toast.Notifier
	validate *catalog.Validator
	log      logrus.FieldLogger
}

// NewSession creates a Session that keeps its token in tokens.
func NewSession(auth Authenticator, tokens token.Store, d Deps) *Session {
	d = d.withDefaults()
	return &Session{
		auth:     auth,
		tokens:   tokens,
		notify:   d.Notifier,
		validate: d.Validator,
		log:      d.Logger.WithField("component", "session"),
	}
}

// Authenticated reports whether a usable token is stored.
func (s *Session) Authenticated() bool {
	return s.tokens.Has()
}

// Login validates the credentials locally, then exchanges them for a token
// and stores it.
func (s *Session) Login(ctx context.Context, username, password string) Result {
	if err := s.validate.Credentials(catalog.Credentials{Username: username, Password: password}); err != nil {
		r := Result{Error: err.Error()}
		var ve *catalog.ValidationError
		if errors.As(err, &ve) {
			r.Error, r.Field = ve.Message, ve.Field
		}
		s.notify.Error(r.Error)
		return r
	}

	tok, err := s.auth.Login(ctx, username, password)
	if err != nil {
		msg := loginMessage(err)
		logger.WithContext(ctx, s.log).WithError(err).Warn("login failed")
		s.notify.Error(msg)
		return Result{Error: msg}
	}
	if err := s.tokens.Set(tok); err != nil {
		logger.WithContext(ctx, s.log).WithError(err).Error("saving token")
		s.notify.Error(catalog.MsgUnexpectedError)
		return Result{Error: catalog.MsgUnexpectedError}
	}
	s.notify.Success(catalog.MsgLoginSuccess)
	return OK
}

// Logout forgets the stored token.
func (s *Session) Logout() Result {
	if err := s.tokens.Remove(); err != nil {
		s.log.WithError(err).Error("removing token")
		s.notify.Error(catalog.MsgUnexpectedError)
		return Result{Error: catalog.MsgUnexpectedError}
	}
	s.notify.Info(catalog.MsgLoggedOut)
	return OK
}

func loginMessage(err error) string {
	switch {
	case api.IsAuth(err):
		return catalog.MsgLoginInvalid
	case api.IsCode(err, api.CodeNoToken):
		return catalog.MsgLoginNoToken
	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 400 {
			return catalog.MsgLoginInvalid
		}
		return describe(err, catalog.MsgUnexpectedError)
	}
}

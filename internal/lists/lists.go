// Package lists holds the list managers behind every screen: categories,
// subcategories and products. Each manager owns a listcache.Store, validates
// input before any request, publishes toasts, and refetches its list after
// every successful write so callers read their own writes.
//
// Manager methods never panic and never return errors; failures come back as
// a Result and an error toast.
package lists

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/listcache"
	"github.com/smileynet/storefront/internal/logger"
	"github.com/smileynet/storefront/internal/toast"
)

// Result is the outcome of a manager operation. Field names the invalid
// input when validation failed.
type Result struct {
	Success bool
	Error   string
	Field   string
}

// OK is the successful Result.
var OK = Result{Success: true}

// Deps are shared by every manager.
type Deps struct {
	Notifier  toast.Notifier
	Validator *catalog.Validator
	Logger    logrus.FieldLogger
	Cache     []listcache.Option
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = toast.Discard{}
	}
	if d.Validator == nil {
		d.Validator = catalog.NewValidator(catalog.Limits{})
	}
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	return d
}

// core is the state and plumbing shared by the managers.
type core[T any] struct {
	store    *listcache.Store[T]
	notify   toast.Notifier
	validate *catalog.Validator
	log      logrus.FieldLogger
}

func newCore[T any](d Deps, resource string) core[T] {
	d = d.withDefaults()
	log := d.Logger.WithField("resource", resource)
	opts := append([]listcache.Option{listcache.WithLogger(log)}, d.Cache...)
	return core[T]{
		store:    listcache.New[T](opts...),
		notify:   d.Notifier,
		validate: d.Validator,
		log:      log,
	}
}

// fetch runs a store fetch and converts a failure into an error toast.
func (c *core[T]) fetch(ctx context.Context, key string, force bool, load listcache.Loader[T], failMsg string) Result {
	if err := c.store.FetchAll(ctx, key, force, load); err != nil {
		msg := describe(err, failMsg)
		c.notify.Error(msg)
		return Result{Error: msg}
	}
	return OK
}

// invalid reports a local validation failure without touching the network.
func (c *core[T]) invalid(err error) Result {
	r := Result{Error: err.Error()}
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		r.Error, r.Field = ve.Message, ve.Field
	}
	c.notify.Error(r.Error)
	return r
}

// failed reports a rejected write.
func (c *core[T]) failed(ctx context.Context, err error, fallback string) Result {
	msg := describe(err, fallback)
	logger.WithContext(ctx, c.log).WithError(err).Warn(fallback)
	c.notify.Error(msg)
	return Result{Error: msg}
}

// describe maps an error to the message shown to the user.
func describe(err error, fallback string) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if msg, ok := catalog.MessageForCode(apiErr.Code); ok {
		return msg
	}
	switch {
	case apiErr.Code == api.CodeNetwork:
		return catalog.MsgConnectionError
	case apiErr.Code == api.CodeTimeout:
		return catalog.MsgTimeout
	case api.IsAuth(err):
		return catalog.MsgSessionExpired
	case apiErr.Message != "":
		return fallback + ": " + apiErr.Message
	default:
		return fallback
	}
}

package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/consentia/pkg/composables"
)

// TxRunner runs fn atomically. composables.InTx is the production runner.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type options struct {
	runInTx TxRunner
	now     func() time.Time
	logger  *logrus.Logger
}

type Option func(*options)

func WithTxRunner(r TxRunner) Option {
	return func(o *options) {
		o.runInTx = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{
		runInTx: composables.InTx,
		now:     time.Now,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// log prefers the request-scoped logger attached by the HTTP middleware.
func (o options) log(ctx context.Context) *logrus.Entry {
	return composables.TryUseLogger(ctx, logrus.NewEntry(o.logger))
}

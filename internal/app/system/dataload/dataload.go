// Package dataload fetches the three collections concurrently under one deadline.
package dataload

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrTimeout is returned when the load does not finish before its deadline.
var ErrTimeout = errors.New("data load timed out")

type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type RegistrationLister interface {
	List(ctx context.Context) ([]models.Registration, error)
}

type LogLister interface {
	List(ctx context.Context, limit int64) ([]models.UserLog, error)
}

// Sources names the collections to load. A nil source loads as empty.
type Sources struct {
	Users         UserLister
	Registrations RegistrationLister
	Logs          LogLister
}

// Data is the result of a load. Degraded lists the collections whose read
// failed and were replaced by an empty list.
type Data struct {
	Users         []models.User
	Registrations []models.Registration
	Logs          []models.UserLog
	Degraded      []string
}

// Load reads all sources in parallel. A failing read degrades to an empty
// list; only the deadline turns into an error (ErrTimeout), even when a
// source ignores its context.
func Load(ctx context.Context, src Sources, timeout time.Duration, log *zap.Logger) (Data, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		users  = []models.User{}
		regs   = []models.Registration{}
		logs   = []models.UserLog{}
		failed = make([]bool, 3)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if src.Users == nil {
			return nil
		}
		out, err := src.Users.List(gctx)
		if err != nil {
			return degrade(ctx, log, "users", err, &failed[0])
		}
		if out != nil {
			users = out
		}
		return nil
	})
	g.Go(func() error {
		if src.Registrations == nil {
			return nil
		}
		out, err := src.Registrations.List(gctx)
		if err != nil {
			return degrade(ctx, log, "registrations", err, &failed[1])
		}
		if out != nil {
			regs = out
		}
		return nil
	})
	g.Go(func() error {
		if src.Logs == nil {
			return nil
		}
		out, err := src.Logs.List(gctx, 0)
		if err != nil {
			return degrade(ctx, log, "logs", err, &failed[2])
		}
		if out != nil {
			logs = out
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-ctx.Done():
		log.Warn("data load timed out", zap.Duration("timeout", timeout))
		return Data{}, ErrTimeout
	case err := <-done:
		if err != nil {
			return Data{}, err
		}
	}

	d := Data{Users: users, Registrations: regs, Logs: logs}
	for i, name := range []string{"users", "registrations", "logs"} {
		if failed[i] {
			d.Degraded = append(d.Degraded, name)
		}
	}
	return d, nil
}

func degrade(ctx context.Context, log *zap.Logger, name string, err error, flag *bool) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	log.Warn("collection read failed; using empty list",
		zap.String("collection", name),
		zap.Error(err))
	*flag = true
	return nil
}

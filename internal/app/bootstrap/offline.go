// internal/app/bootstrap/offline.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

// Stand-ins used when no document store is configured. Every call fails
// with docstore.ErrNotConfigured, which handlers report as 503.

type offlineUsers struct{}

func (offlineUsers) List(context.Context) ([]models.User, error) { return nil, docstore.ErrNotConfigured }
func (offlineUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, docstore.ErrNotConfigured
}
func (offlineUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, docstore.ErrNotConfigured
}
func (offlineUsers) Put(context.Context, models.User) error    { return docstore.ErrNotConfigured }
func (offlineUsers) Create(context.Context, models.User) error { return docstore.ErrNotConfigured }
func (offlineUsers) Delete(context.Context, string) error      { return docstore.ErrNotConfigured }
func (offlineUsers) Count(context.Context) (int64, error)      { return 0, docstore.ErrNotConfigured }

type offlineRegistrations struct{}

func (offlineRegistrations) List(context.Context) ([]models.Registration, error) {
	return nil, docstore.ErrNotConfigured
}
func (offlineRegistrations) GetByID(context.Context, string) (*models.Registration, error) {
	return nil, docstore.ErrNotConfigured
}
func (offlineRegistrations) Put(context.Context, models.Registration) error {
	return docstore.ErrNotConfigured
}
func (offlineRegistrations) Delete(context.Context, string) error { return docstore.ErrNotConfigured }

type offlineLogs struct{}

func (offlineLogs) Add(context.Context, models.UserLog) (models.UserLog, error) {
	return models.UserLog{}, docstore.ErrNotConfigured
}
func (offlineLogs) List(context.Context, int64) ([]models.UserLog, error) {
	return nil, docstore.ErrNotConfigured
}

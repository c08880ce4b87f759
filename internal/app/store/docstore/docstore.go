// internal/app/store/docstore/docstore.go
package docstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection         = "users"
	RegistrationsCollection = "registrations"
	LogsCollection          = "logs"
)

var (
	// ErrNotConfigured is returned by Open when the URI or database name is
	// missing. The app treats this as "no store available" and keeps running.
	ErrNotConfigured = errors.New("document store is not configured")

	// ErrNotFound is returned by the entity stores when a document is absent.
	ErrNotFound = errors.New("document not found")
)

// Config describes how to reach the document store.
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// Handle bundles a connected client and the selected database.
type Handle struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Handle, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, ErrNotConfigured
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Handle{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects the client. Safe on a nil handle.
func (h *Handle) Close(ctx context.Context) error {
	if h == nil || h.Client == nil {
		return nil
	}
	return h.Client.Disconnect(ctx)
}

// NotFound maps mongo.ErrNoDocuments to ErrNotFound and passes other errors through.
func NotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

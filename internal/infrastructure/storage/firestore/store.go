// Package firestore is the Cloud Firestore implementation of the document
// store port. The change feed is a collection snapshot listener: Firestore
// delivers the initial collection contents as added changes, then pushes
// incremental changes in commit order.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mminv/internal/domain/store"
	"mminv/pkg/logger"
)

// Store implements store.Store over a Firestore client.
type Store struct {
	client *firestore.Client
	log    *logger.Logger
}

// Config holds Firestore connection settings.
type Config struct {
	ProjectID string
	// CredentialsFile optionally points at a service account key; when
	// empty, application default credentials apply.
	CredentialsFile string
}

// New connects a Firestore-backed store.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: connect: %w", err)
	}
	return &Store{client: client, log: log.WithComponent("firestore")}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Listen implements store.Store. The feed runs until ctx is cancelled; a
// stream error is reported once to onError and the feed stops. Reconnection
// is the operator's concern.
func (s *Store) Listen(ctx context.Context, collection string, apply func(store.ChangeEvent), onError func(error)) {
	go func() {
		it := s.client.Collection(collection).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				onError(err)
				return
			}
			for _, change := range snap.Changes {
				ev := store.ChangeEvent{ID: change.Doc.Ref.ID}
				switch change.Kind {
				case firestore.DocumentAdded:
					ev.Kind = store.Added
					ev.Data = store.Document(change.Doc.Data())
				case firestore.DocumentModified:
					ev.Kind = store.Modified
					ev.Data = store.Document(change.Doc.Data())
				case firestore.DocumentRemoved:
					ev.Kind = store.Removed
				default:
					continue
				}
				apply(ev)
			}
		}
	}()
}

// AddDocument implements store.Store. Firestore assigns the identity.
func (s *Store) AddDocument(ctx context.Context, collection string, doc store.Document) error {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, translate(doc)); err != nil {
		return fmt.Errorf("firestore: add to %s: %w", collection, err)
	}
	return nil
}

// UpdateDocument implements store.Store as a merge write: only the given
// fields change, the rest of the document is untouched.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, fields store.Document) error {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Set(ctx, translate(fields), firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore: update %s/%s: %w", collection, id, err)
	}
	return nil
}

// translate swaps the port's server timestamp sentinel for Firestore's and
// converts nested documents, leaving other values as-is.
func translate(doc store.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch {
		case store.IsServerTimestamp(v):
			out[k] = firestore.ServerTimestamp
		default:
			if nested, ok := v.(store.Document); ok {
				out[k] = translate(nested)
				continue
			}
			out[k] = v
		}
	}
	return out
}

// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const documentChannel = "document_updates"

// PostgresStore backs the document store with a single JSONB table.
// Update relies on the jsonb || operator, which merges top-level keys
// only, matching the Store.Update contract. Writes publish the path on
// a NOTIFY channel so subscriptions work across processes.
type PostgresStore struct {
	db       *sqlx.DB
	listener *pq.Listener

	mu          sync.RWMutex
	subscribers map[int]*pgSubscription
	nextSubID   int
}

type pgSubscription struct {
	path     string
	onChange func(path string, doc map[string]interface{})
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	s := &PostgresStore{
		db:          db,
		subscribers: make(map[int]*pgSubscription),
	}

	if err := s.initializeTables(); err != nil {
		return nil, err
	}

	s.listener = pq.NewListener(connectionString, 10*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				log.Printf("PostgreSQL listener event %d: %v", event, err)
			}
		})
	if err := s.listener.Listen(documentChannel); err != nil {
		return nil, fmt.Errorf("failed to LISTEN on %s: %v", documentChannel, err)
	}
	go s.dispatchNotifications()

	return s, nil
}

func (s *PostgresStore) initializeTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %v", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT data FROM documents WHERE path = $1`, path)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupt document at %s: %v", path, err)
	}
	return doc, nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, doc map[string]interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, path, raw)
	if err != nil {
		return err
	}
	return s.notifyWrite(ctx, path)
}

func (s *PostgresStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (path) DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = NOW()
	`, path, raw)
	if err != nil {
		return err
	}
	return s.notifyWrite(ctx, path)
}

func (s *PostgresStore) List(ctx context.Context, collection string) (map[string]map[string]interface{}, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT path, data FROM documents WHERE path LIKE $1`, collection+"/%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefix := collection + "/"
	result := make(map[string]map[string]interface{})
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, err
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("Skipping corrupt document at %s: %v", path, err)
			continue
		}
		result[path[len(prefix):]] = doc
	}
	return result, rows.Err()
}

func (s *PostgresStore) Subscribe(path string, onChange func(path string, doc map[string]interface{})) (func(), error) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = &pgSubscription{path: path, onChange: onChange}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	if s.listener != nil {
		s.listener.Close()
	}
	return s.db.Close()
}

func (s *PostgresStore) notifyWrite(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, documentChannel, path)
	return err
}

func (s *PostgresStore) dispatchNotifications() {
	for notification := range s.listener.Notify {
		if notification == nil {
			// Connection re-established; subscribers may have missed events.
			continue
		}
		path := notification.Extra

		s.mu.RLock()
		var matched []*pgSubscription
		for _, sub := range s.subscribers {
			if pathMatches(sub.path, path) {
				matched = append(matched, sub)
			}
		}
		s.mu.RUnlock()

		if len(matched) == 0 {
			continue
		}

		doc, err := s.Get(context.Background(), path)
		if err != nil || doc == nil {
			if err != nil {
				log.Printf("Failed to fetch notified document %s: %v", path, err)
			}
			continue
		}
		for _, sub := range matched {
			sub.onChange(path, doc)
		}
	}
}

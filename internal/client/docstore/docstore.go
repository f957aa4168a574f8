package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/dmitrijs2005/amanotes/internal/dbx"
	"github.com/google/uuid"
)

// newID is a seam for tests.
var newID = uuid.NewString

// Document is one stored JSON body with its store-managed metadata.
type Document struct {
	ID        string
	OwnerID   string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// Client hands out collections sharing one connection pool and notifier.
type Client struct {
	db       dbx.DBTX
	notifier Notifier
}

func New(db dbx.DBTX, notifier Notifier) *Client {
	return &Client{db: db, notifier: notifier}
}

func (c *Client) Collection(name string) *Collection {
	return &Collection{name: name, db: c.db, notifier: c.notifier}
}

// Collection is a named group of documents.
type Collection struct {
	name     string
	db       dbx.DBTX
	notifier Notifier
}

func (c *Collection) Name() string { return c.name }

// Channel is the notification channel the collection's trigger publishes on.
func (c *Collection) Channel() string { return "docs_" + c.name }

// Add stores v as a new document with a generated id and returns the id.
func (c *Collection) Add(ctx context.Context, ownerID string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := newID()
	query := `INSERT INTO documents (collection, id, owner_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now(), now())`
	if _, err := c.db.ExecContext(ctx, query, c.name, id, ownerID, string(data)); err != nil {
		return "", fmt.Errorf("%w: add to %s: %v", common.ErrTransport, c.name, err)
	}
	return id, nil
}

// Set replaces the body of document id, creating it when absent. A document
// owned by somebody else is left untouched and reported as not found.
func (c *Collection) Set(ctx context.Context, id, ownerID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `INSERT INTO documents (collection, id, owner_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now(), now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		WHERE documents.owner_id = EXCLUDED.owner_id`
	res, err := c.db.ExecContext(ctx, query, c.name, id, ownerID, string(data))
	if err != nil {
		return fmt.Errorf("%w: set %s/%s: %v", common.ErrTransport, c.name, id, err)
	}
	return dbx.ExpectOne(res)
}

// Merge shallow-merges fields into document id in one statement.
func (c *Collection) Merge(ctx context.Context, id, ownerID string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `UPDATE documents SET data = data || $1::jsonb, updated_at = now()
		WHERE collection = $2 AND id = $3 AND owner_id = $4`
	res, err := c.db.ExecContext(ctx, query, string(data), c.name, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: merge %s/%s: %v", common.ErrTransport, c.name, id, err)
	}
	return dbx.ExpectOne(res)
}

// Get returns the document or common.ErrNotFound.
func (c *Collection) Get(ctx context.Context, id, ownerID string) (*Document, error) {
	query := `SELECT id, owner_id, data, created_at, updated_at FROM documents
		WHERE collection = $1 AND id = $2 AND owner_id = $3`
	row := c.db.QueryRowContext(ctx, query, c.name, id, ownerID)

	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s/%s: %v", common.ErrTransport, c.name, id, err)
	}
	return d, nil
}

func (c *Collection) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2 AND owner_id = $3`
	res, err := c.db.ExecContext(ctx, query, c.name, id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", common.ErrTransport, c.name, id, err)
	}
	return dbx.ExpectOne(res)
}

// Query starts a query over the documents owned by ownerID.
func (c *Collection) Query(ownerID string) *Query {
	return &Query{coll: c, ownerID: ownerID}
}

// Package docstore is a small document-store client over PostgreSQL.
//
// Documents live in a single table keyed by (collection, id) and carry the
// owning user's id plus a JSONB body. Queries compare JSON values directly
// (data->'field' op value::jsonb), so filters and ordering run in the
// database. Range filters only match values of the same JSON type.
//
// Every write fires a trigger that publishes pg_notify('docs_<collection>',
// owner_id); Watch turns those notifications into live query streams.
//
// The schema is created by the backend host's migrations.
package docstore

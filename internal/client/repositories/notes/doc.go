// Package notes provides persistence for notes.
//
// Repository has two implementations selected at construction time:
// SQLiteRepository over the on-device database and CloudRepository over the
// "notes" document collection scoped to one owner. Both order listings by
// UpdatedAt, newest first, and both emit full result sets from Watch*
// methods whenever the underlying data changes.
package notes

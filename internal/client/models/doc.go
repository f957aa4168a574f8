// Package models defines the client-side entities shared by both storage
// backends: notes, tasks, projects and the local user session.
//
// Identifiers are strings everywhere. SQLite rows render their integer
// primary key in decimal, cloud documents carry UUIDs.
package models

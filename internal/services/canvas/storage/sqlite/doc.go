// Package sqlite implements canvas persistence on SQLite with embedded,
// filename-ordered migrations.
package sqlite

// Package repository holds the SQLite backed stores of the bot.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("repository: not found")

// ErrLimitReached is returned when an insert would exceed a row limit.
var ErrLimitReached = errors.New("repository: limit reached")

// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package db

import (
	"context"
	"time"
)

// Entry is one journaled bridge operation.
type Entry struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Bridge    string    `json:"bridge"`
	Interface string    `json:"interface,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 100

// Journal is an append-only record of requested operations and their outcome.
type Journal interface {
	Record(ctx context.Context, entry *Entry) (int64, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Store describes the persistence surface consumed by the daemon.
type Store interface {
	Close(ctx context.Context) error
	Journal() Journal
}

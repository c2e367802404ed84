// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists registry notifications in sqlite and serves
// filtered queries over them. It implements event.Notifier, so it can be
// composed with other notifiers via event.Multi.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vechain/priorq/event"
	"github.com/vechain/priorq/priorq"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	account BLOB(20),
	externalID BLOB(32),
	amount BLOB,
	position INTEGER,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS eventName ON event(name);
CREATE INDEX IF NOT EXISTS eventAccount ON event(account);
CREATE INDEX IF NOT EXISTS eventTime ON event(time);`

// RangeType unit of a filter range.
type RangeType string

// Range units.
const (
	Seq  RangeType = "Seq"
	Time RangeType = "Time"
)

// OrderType result ordering.
type OrderType string

// Orderings.
const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range bounds a filter by sequence number or time, inclusive.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

// Options pagination.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter criteria for querying stored notifications. Nil fields match
// everything.
type Filter struct {
	Name       string          `json:"name"`
	Account    *priorq.Address `json:"account"`
	ExternalID *priorq.Bytes32 `json:"externalID"`
	Range      *Range          `json:"range"`
	Options    *Options        `json:"options"`
	Order      OrderType       `json:"order"` // default ASC
}

// EventDB stores notifications in sqlite.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *EventDB) Close() error {
	return db.db.Close()
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// Notify implements event.Notifier. The batch goes in as one transaction:
// either every notification of the operation is stored, or none is. A failure
// propagates to the emitting operation, which reverts.
func (db *EventDB) Notify(events []event.Event) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, ev := range events {
		var amount []byte
		if ev.Amount != nil {
			amount = ev.Amount.Bytes()
		}
		if _, err := tx.Exec(
			"INSERT INTO event(seq, name, account, externalID, amount, position, time) VALUES(?,?,?,?,?,?,?)",
			ev.Seq,
			ev.Name,
			ev.Account.Bytes(),
			ev.ExternalID.Bytes(),
			amount,
			ev.Position,
			ev.Time,
		); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
	}
	return tx.Commit()
}

// MaxSeq implements event.Sequencer: the highest stored sequence number,
// zero for an empty stream.
func (db *EventDB) MaxSeq() (uint64, error) {
	var seq uint64
	if err := db.db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// Filter queries stored notifications.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*event.Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}

	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Name != "" {
		args = append(args, filter.Name)
		stmt += " AND name = ? "
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if filter.ExternalID != nil {
		args = append(args, filter.ExternalID.Bytes())
		stmt += " AND externalID = ? "
	}
	if filter.Range != nil {
		condition := "seq"
		if filter.Range.Unit == Time {
			condition = "time"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*event.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var (
			seq      uint64
			name     string
			account  []byte
			external []byte
			amount   []byte
			position uint64
			time     uint64
		)
		if err := rows.Scan(&seq, &name, &account, &external, &amount, &position, &time); err != nil {
			return nil, err
		}
		events = append(events, &event.Event{
			Seq:        seq,
			Name:       name,
			Account:    priorq.BytesToAddress(account),
			ExternalID: priorq.BytesToBytes32(external),
			Amount:     new(big.Int).SetBytes(amount),
			Position:   position,
			Time:       time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

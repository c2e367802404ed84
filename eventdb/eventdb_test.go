// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/priorq/event"
	"github.com/vechain/priorq/priorq"
)

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedEvents(t *testing.T, db *EventDB) (priorq.Address, priorq.Bytes32) {
	account := priorq.BytesToAddress([]byte("alice"))
	other := priorq.BytesToAddress([]byte("bob"))
	stakeID := priorq.BytesToBytes32([]byte("stake-1"))

	require.NoError(t, db.Notify([]event.Event{
		{Seq: 1, Name: event.WalletRegistered, Account: account, Time: 100},
		{Seq: 2, Name: event.EnteredQueue, Account: account, ExternalID: stakeID, Amount: big.NewInt(19), Time: 110},
		{Seq: 3, Name: event.QueueUpdated, ExternalID: stakeID, Position: 0, Time: 110},
		{Seq: 4, Name: event.WalletRegistered, Account: other, Time: 120},
		{Seq: 5, Name: event.StakeRemoved, Account: account, ExternalID: stakeID, Amount: big.NewInt(19), Time: 130},
	}))
	return account, stakeID
}

func TestFilterAll(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 5)

	// ascending seq order, fields round trip
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, event.WalletRegistered, events[0].Name)
	assert.Equal(t, big.NewInt(19), events[1].Amount)
	assert.Equal(t, uint64(110), events[2].Time)
}

func TestFilterCriteria(t *testing.T) {
	db := newTestDB(t)
	account, stakeID := seedEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{Account: &account})
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = db.Filter(context.Background(), &Filter{ExternalID: &stakeID, Name: event.StakeRemoved})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(5), events[0].Seq)

	events, err = db.Filter(context.Background(), &Filter{
		Range: &Range{Unit: Time, From: 110, To: 120},
	})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestFilterOrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	seedEvents(t, db)

	events, err := db.Filter(context.Background(), &Filter{
		Order:   DESC,
		Options: &Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(4), events[0].Seq)
	assert.Equal(t, uint64(3), events[1].Seq)
}

func TestDuplicateSeqRejected(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Notify([]event.Event{{Seq: 1, Name: event.WalletRegistered, Time: 1}}))
	assert.Error(t, db.Notify([]event.Event{{Seq: 1, Name: event.WalletRegistered, Time: 2}}))
}

func TestMaxSeq(t *testing.T) {
	db := newTestDB(t)

	seq, err := db.MaxSeq()
	require.NoError(t, err)
	assert.Zero(t, seq)

	seedEvents(t, db)

	seq, err = db.MaxSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), seq)
}

func TestNotifyBatchAtomic(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Notify([]event.Event{{Seq: 1, Name: event.WalletRegistered, Time: 1}}))

	// the third event collides on seq, so the whole batch must be discarded
	assert.Error(t, db.Notify([]event.Event{
		{Seq: 2, Name: event.EnteredQueue, Time: 2},
		{Seq: 3, Name: event.QueueUpdated, Time: 2},
		{Seq: 1, Name: event.WalletRegistered, Time: 2},
	}))

	events, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].Seq)
}

// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var rec Recorder

	require.NoError(t, rec.Notify([]Event{
		{Seq: 1, Name: WalletRegistered},
		{Seq: 2, Name: EnteredQueue},
	}))

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, WalletRegistered, events[0].Name)
	assert.Equal(t, EnteredQueue, events[1].Name)

	// Events returns a snapshot, not the backing slice
	require.NoError(t, rec.Notify([]Event{{Seq: 3, Name: QueueUpdated}}))
	assert.Len(t, events, 2)

	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestMulti(t *testing.T) {
	var first, second Recorder
	boom := errors.New("boom")

	m := Multi{&first, NotifierFunc(func([]Event) error { return boom }), &second}

	err := m.Notify([]Event{{Name: StakeRemoved}})
	assert.ErrorIs(t, err, boom)

	// fan-out stops at the failing notifier
	assert.Len(t, first.Events(), 1)
	assert.Empty(t, second.Events())
}

type seqNotifier struct {
	Recorder
	max uint64
}

func (s *seqNotifier) MaxSeq() (uint64, error) { return s.max, nil }

func TestMultiMaxSeq(t *testing.T) {
	m := Multi{&Recorder{}, &seqNotifier{max: 7}, &seqNotifier{max: 3}}

	max, err := m.MaxSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), max)

	// no persistent members means an empty stream
	max, err = Multi{&Recorder{}}.MaxSeq()
	require.NoError(t, err)
	assert.Zero(t, max)
}

package events

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDispatchStampsAndDelivers(t *testing.T) {
	rec := NewRecorder(10)
	d := NewDispatcher(quietLogger(), rec)

	d.Dispatch(context.Background(), Event{
		Type:    TypeUserRegistered,
		Account: "acct-1",
		Data:    map[string]any{"fid": int64(100)},
	})

	require.Equal(t, 1, rec.Len())
	got := rec.Events()[0]
	assert.Equal(t, TypeUserRegistered, got.Type)
	assert.NotZero(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())

	byID, ok := rec.ByID(got.ID.String())
	require.True(t, ok)
	assert.Equal(t, got.Type, byID.Type)
}

func TestDispatchFansOutToAllSinks(t *testing.T) {
	var a, b atomic.Int32
	d := NewDispatcher(quietLogger(),
		SinkFunc(func(ctx context.Context, e Event) error { a.Add(1); return nil }),
		SinkFunc(func(ctx context.Context, e Event) error { b.Add(1); return nil }),
	)

	d.Dispatch(context.Background(), Event{Type: TypePremiumPaid})
	d.Dispatch(context.Background(), Event{Type: TypePlusSubscribed})

	assert.Equal(t, int32(2), a.Load())
	assert.Equal(t, int32(2), b.Load())
}

func TestDispatchSwallowsSinkErrors(t *testing.T) {
	rec := NewRecorder(10)
	d := NewDispatcher(quietLogger(),
		SinkFunc(func(ctx context.Context, e Event) error { return errors.New("sink down") }),
		rec,
	)

	d.Dispatch(context.Background(), Event{Type: TypeUserDeleted})
	assert.Equal(t, 1, rec.Len())
}

func TestRecorderCapacityBound(t *testing.T) {
	rec := NewRecorder(3)
	d := NewDispatcher(quietLogger(), rec)

	types := []Type{TypeUserRegistered, TypeUserUpdated, TypeUserDeleted, TypePremiumPaid}
	for _, typ := range types {
		d.Dispatch(context.Background(), Event{Type: typ})
	}

	got := rec.Events()
	require.Len(t, got, 3)
	assert.Equal(t, TypeUserUpdated, got[0].Type)
	assert.Equal(t, TypePremiumPaid, got[2].Type)

	// The oldest event aged out of the by-id index as well.
	assert.Equal(t, 3, rec.Len())
}

func TestRecorderOfType(t *testing.T) {
	rec := NewRecorder(10)
	d := NewDispatcher(quietLogger(), rec)

	d.Dispatch(context.Background(), Event{Type: TypePremiumPaid, Account: "a"})
	d.Dispatch(context.Background(), Event{Type: TypeUserUpdated, Account: "b"})
	d.Dispatch(context.Background(), Event{Type: TypePremiumPaid, Account: "c"})

	paid := rec.OfType(TypePremiumPaid)
	require.Len(t, paid, 2)
	assert.Equal(t, "a", paid[0].Account.String())
	assert.Equal(t, "c", paid[1].Account.String())
}

func TestAddSink(t *testing.T) {
	d := NewDispatcher(quietLogger())
	rec := NewRecorder(10)

	d.Dispatch(context.Background(), Event{Type: TypeUserRegistered})
	d.AddSink(rec)
	d.Dispatch(context.Background(), Event{Type: TypeUserUpdated})

	require.Equal(t, 1, rec.Len())
	assert.Equal(t, TypeUserUpdated, rec.Events()[0].Type)
}

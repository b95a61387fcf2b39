package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusEmit(t *testing.T) {
	bus := NewBus()

	var received []MintedEvent
	bus.Subscribe(EventTypeMinted, func(ctx context.Context, event Event) {
		received = append(received, event.(MintedEvent))
	})

	minted := MintedEvent{
		OperationID:  "op-1",
		To:           "alice",
		Amount:       500,
		StampedRate:  3170,
		NewPrincipal: 500,
	}
	bus.Emit(context.Background(), minted)

	assert.Equal(t, []MintedEvent{minted}, received)
}

func TestBusEmit_OnlyMatchingType(t *testing.T) {
	bus := NewBus()

	mintCount := 0
	burnCount := 0
	bus.Subscribe(EventTypeMinted, func(ctx context.Context, event Event) {
		mintCount++
	})
	bus.Subscribe(EventTypeBurned, func(ctx context.Context, event Event) {
		burnCount++
	})

	bus.Emit(context.Background(), MintedEvent{To: "alice", Amount: 100})
	bus.Emit(context.Background(), MintedEvent{To: "bob", Amount: 200})
	bus.Emit(context.Background(), BurnedEvent{From: "alice", Amount: 50})

	assert.Equal(t, 2, mintCount)
	assert.Equal(t, 1, burnCount)
}

func TestBusEmit_RecoversPanickingHandler(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(EventTypeRateLowered, func(ctx context.Context, event Event) {
		panic("handler exploded")
	})
	called := false
	bus.Subscribe(EventTypeRateLowered, func(ctx context.Context, event Event) {
		called = true
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), RateLoweredEvent{OldRate: 100, NewRate: 50})
	})
	assert.True(t, called, "handlers after the panicking one still run")
}

func TestTransactionalBusFlush(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	var received []Event
	mainBus.Subscribe(EventTypeDeposited, func(ctx context.Context, event Event) {
		received = append(received, event)
	})
	mainBus.Subscribe(EventTypeMinted, func(ctx context.Context, event Event) {
		received = append(received, event)
	})

	txBus.Publish(MintedEvent{To: "alice", Amount: 1_000})
	txBus.Publish(DepositedEvent{Caller: "alice", Amount: 1_000})

	// Nothing leaves the transactional bus before commit
	assert.Empty(t, received)

	txBus.Flush(context.Background())
	assert.Len(t, received, 2)
	assert.IsType(t, MintedEvent{}, received[0])
	assert.IsType(t, DepositedEvent{}, received[1])

	// A second flush has nothing left to deliver
	txBus.Flush(context.Background())
	assert.Len(t, received, 2)
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := false
	mainBus.Subscribe(EventTypeRedeemed, func(ctx context.Context, event Event) {
		received = true
	})

	txBus.Publish(RedeemedEvent{Caller: "alice", Amount: 500})
	txBus.Discard()
	txBus.Flush(context.Background())

	assert.False(t, received, "discarded events must not be delivered")
}

package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	var b Bus
	var got []string

	b.Subscribe(EventHealthChanged, func(Event) { got = append(got, "first") })
	b.SubscribeAll(func(Event) { got = append(got, "all") })
	b.Subscribe(EventHealthChanged, func(Event) { got = append(got, "second") })
	b.Subscribe(EventImpact, func(Event) { got = append(got, "impact") })

	b.Publish(Event{Kind: EventHealthChanged})
	assert.Empty(t, got, "publish must not deliver before flush")

	assert.Equal(t, 1, b.Flush())
	assert.Equal(t, []string{"first", "all", "second"}, got)
}

func TestBusUnsubscribeAndChainedPublish(t *testing.T) {
	var b Bus
	var kinds []EventKind

	unsub := b.Subscribe(EventEnemyDefeated, func(evt Event) {
		kinds = append(kinds, evt.Kind)
		b.Publish(Event{Kind: EventWaveCleared})
	})
	b.Subscribe(EventWaveCleared, func(evt Event) { kinds = append(kinds, evt.Kind) })

	b.Publish(Event{Kind: EventEnemyDefeated})
	assert.Equal(t, 2, b.Flush())
	assert.Equal(t, []EventKind{EventEnemyDefeated, EventWaveCleared}, kinds)

	unsub()
	kinds = nil
	b.Publish(Event{Kind: EventEnemyDefeated})
	b.Flush()
	assert.Empty(t, kinds)
	assert.Zero(t, b.Pending())
}

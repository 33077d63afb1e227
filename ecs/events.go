package ecs

import (
	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs/component"
)

// EventKind identifies a notification published on the Bus.
type EventKind string

const (
	EventHealthChanged        EventKind = "health_changed"
	EventDefeated             EventKind = "defeated"
	EventEnemyDefeated        EventKind = "enemy_defeated"
	EventPlayerDefeated       EventKind = "player_defeated"
	EventRewardGranted        EventKind = "reward_granted"
	EventWaveCleared          EventKind = "wave_cleared"
	EventAttackSignal         EventKind = "attack_signal"
	EventImpact               EventKind = "impact"
	EventProjectileSpawned    EventKind = "projectile_spawned"
	EventProjectileTerminated EventKind = "projectile_terminated"
)

// Event is a bus payload. Entity is the subject of the event.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

type HealthChanged struct {
	Previous int
	Current  int
	Max      int
}

type Defeated struct {
	Faction component.Faction
	Killer  Entity
}

type RewardGranted struct {
	Enemy  Entity
	Killer Entity
}

type WaveCleared struct {
	Defeated int
}

type AttackSignal struct {
	Target   Entity
	Power    int
	Critical bool
}

type Impact struct {
	Projectile Entity
	Target     Entity
	Point      common.Vec3
}

type ProjectileSpawned struct {
	Owner     Entity
	Direction common.Vec3
	Power     int
	Critical  bool
}

type ProjectileTerminated struct {
	Reason component.TerminateReason
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

type Handler func(Event)

type subscription struct {
	id   int
	kind EventKind
	all  bool
	fn   Handler
}

// Bus is an observer list. Published events are queued and delivered on
// Flush, in publish order, each to its subscribers in subscription order.
type Bus struct {
	subs   []subscription
	nextID int
	queue  EventQueue
}

// Subscribe registers fn for kind and returns a function that removes it.
func (b *Bus) Subscribe(kind EventKind, fn Handler) func() {
	return b.add(subscription{kind: kind, fn: fn})
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn Handler) func() {
	return b.add(subscription{all: true, fn: fn})
}

func (b *Bus) add(sub subscription) func() {
	if b == nil || sub.fn == nil {
		return func() {}
	}
	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)
	id := sub.id
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.queue.Push(evt)
}

func (b *Bus) Pending() int {
	if b == nil {
		return 0
	}
	return b.queue.Len()
}

// Flush delivers queued events. Events published by handlers during the
// flush are delivered in the same call, after the current batch.
func (b *Bus) Flush() int {
	if b == nil {
		return 0
	}
	delivered := 0
	for {
		batch := b.queue.Drain()
		if len(batch) == 0 {
			return delivered
		}
		for _, evt := range batch {
			subs := append([]subscription(nil), b.subs...)
			for _, s := range subs {
				if s.all || s.kind == evt.Kind {
					s.fn(evt)
				}
			}
			delivered++
		}
	}
}

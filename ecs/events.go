package ecs

import "github.com/milk9111/fanbuilder/ecs/component"

// EventType identifies simulation side effects surfaced to the mode controller.
type EventType string

const (
	EventStomp         EventType = "stomp"
	EventDamage        EventType = "damage"
	EventPlayerDied    EventType = "player_died"
	EventCoinCollected EventType = "coin_collected"
	EventPowerup       EventType = "powerup"
	EventBlockBroken   EventType = "block_broken"
	EventItemSpawned   EventType = "item_spawned"
	EventSpawnFailed   EventType = "spawn_failed"
)

// Event is a simulation event payload.
type Event struct {
	Type   EventType
	Entity Entity
	Cell   component.Cell
	// Detail carries the subtype involved, e.g. the powerup or item kind.
	Detail string
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

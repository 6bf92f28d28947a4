package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Mirror republishes broadcasts to an external pub/sub channel so a future
// multi-process deployment can fan out across brokers. Nothing in-process
// consumes the mirrored stream.
type Mirror interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Dispatcher delivers event payloads to every session currently in a room,
// including the session that originated the mutation. Delivery is best-effort
// and isolated per session: one slow or disconnected member never blocks the
// rest, and all current members have been handed the envelope by the time
// Broadcast returns.
type Dispatcher struct {
	registry *Registry
	mirror   Mirror // nil when no external pub/sub is configured
}

func NewDispatcher(registry *Registry, mirror Mirror) *Dispatcher {
	return &Dispatcher{registry: registry, mirror: mirror}
}

// Broadcast marshals payload once and delivers it to the room's current
// membership snapshot. Marshal and mirror failures are logged, never
// propagated: by the time Broadcast runs the mutation is already persisted,
// and broadcast is not at-least-once.
func (d *Dispatcher) Broadcast(ctx context.Context, room, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("room", room).Str("event", event).Msg("broadcast: marshal payload")
		return
	}

	env := Envelope{Event: event, Data: data}
	for _, member := range d.registry.MembersOf(room) {
		if !member.Deliver(env) {
			// Disconnected mid-broadcast or queue full; the client
			// re-syncs on reconnect.
			log.Debug().Str("room", room).Str("event", event).Str("session", member.ID().String()).Msg("broadcast: delivery skipped")
		}
	}

	if d.mirror != nil {
		raw, err := json.Marshal(env)
		if err == nil {
			err = d.mirror.Publish(ctx, room, raw)
		}
		if err != nil {
			log.Warn().Err(err).Str("room", room).Str("event", event).Msg("broadcast: mirror publish")
		}
	}
}

// Dispatch runs a list of broadcast instructions in the order the coordinator
// emitted them.
func (d *Dispatcher) Dispatch(ctx context.Context, broadcasts []Broadcast) {
	for _, b := range broadcasts {
		d.Broadcast(ctx, b.Room, b.Event, b.Payload)
	}
}

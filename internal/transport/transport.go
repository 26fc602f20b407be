// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport defines the P2P gossip interface the core treats
// as an external collaborator (spec §6) plus two concrete
// implementations: an in-process broker for tests and single-host
// swarms, and a NATS-backed broker for multi-host deployments.
package transport

import (
	"context"
)

// Message is one gossip delivery: the raw envelope bytes on a topic.
type Message struct {
	Topic string
	Data  []byte
}

// Handler processes one inbound gossip message.
type Handler func(Message)

// PubSub is the authenticated, signed, topic-based publish/subscribe
// surface spec §1 treats as external. Implementations need not
// authenticate or sign themselves — that is the envelope layer's job —
// but must deliver Publish'd bytes to every live Subscribe'r of the
// same topic.
type PubSub interface {
	Publish(ctx context.Context, topic string, data []byte) error
	Subscribe(ctx context.Context, topic string, h Handler) (Unsubscribe, error)
}

// Unsubscribe cancels a prior Subscribe.
type Unsubscribe func()

// DHT is the peer-lookup surface spec §1 treats as external.
// Implementations resolve a logical peer key (e.g. a DID) to
// reachability information. Neither broker in this package performs a
// real DHT lookup (delivery is topic-addressed, not peer-addressed):
// InProc's Lookup is a no-op, and NATSBroker's Lookup forwards the key
// as a NATS request on "dht.lookup.<key>" and returns the reply.
type DHT interface {
	Lookup(ctx context.Context, key string) ([]byte, error)
}

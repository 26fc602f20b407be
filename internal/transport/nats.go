// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"

	"github.com/nats-io/nats.go"
)

// NATSBroker backs PubSub with a real NATS subject per gossip topic,
// for multi-host swarms. The choice of NATS as the pub/sub substrate
// for agent-to-agent task coordination is grounded on
// dataparency-dev/AI-delegation, which uses nats.go as the backbone
// for exactly this kind of task-bidding broadcast; this package talks
// to nats.go directly rather than through that repo's proprietary
// natsclient wrapper, since the core here owns its own topic naming
// (spec §6) and signing (component B).
type NATSBroker struct {
	conn *nats.Conn
}

// DialNATS connects to a NATS server at url.
func DialNATS(url string) (*NATSBroker, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSBroker{conn: conn}, nil
}

func (b *NATSBroker) Publish(_ context.Context, topic string, data []byte) error {
	return b.conn.Publish(topic, data)
}

func (b *NATSBroker) Subscribe(_ context.Context, topic string, h Handler) (Unsubscribe, error) {
	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		h(Message{Topic: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Lookup resolves key via a NATS request and replies with whatever
// payload the swarm's naming-registry responder returns; deployments
// that need true DHT semantics can swap this for a Kademlia client
// without changing callers, since DHT is an external collaborator.
func (b *NATSBroker) Lookup(ctx context.Context, key string) ([]byte, error) {
	msg, err := b.conn.RequestWithContext(ctx, "dht.lookup."+key, nil)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// Close drains and closes the underlying connection.
func (b *NATSBroker) Close() {
	b.conn.Close()
}

// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/holon/internal/metrics"
)

func signedRequest(t *testing.T, priv ed25519.PrivateKey, id, method string, params json.RawMessage) Request {
	t.Helper()
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`"` + id + `"`), Method: method, Params: params}
	req.Signature = ed25519.Sign(priv, signedPayload(req))
	return req
}

func TestHandleHardenedAcceptsValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, true, nil, nil)
	s.Register("ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "pong", nil
	})

	req := signedRequest(t, priv, "1", "ping", nil)
	line, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handle(context.Background(), line)
	require.Nil(t, resp.Error)
	require.Equal(t, "pong", resp.Result)
}

func TestHandleHardenedRejectsMissingSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, true, nil, nil)
	s.Register("ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "pong", nil
	})

	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`"1"`), Method: "ping"}
	line, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handle(context.Background(), line)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
}

func TestHandleHardenedRejectsTamperedParams(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, true, nil, nil)
	s.Register("ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "pong", nil
	})

	req := signedRequest(t, priv, "1", "ping", json.RawMessage(`{"n":1}`))
	req.Params = json.RawMessage(`{"n":2}`)
	line, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handle(context.Background(), line)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
}

func TestHandleUnhardenedAllowsUnsignedRequest(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, false, nil, nil)
	s.Register("ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "pong", nil
	})

	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`"1"`), Method: "ping"}
	line, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handle(context.Background(), line)
	require.Nil(t, resp.Error)
	require.Equal(t, "pong", resp.Result)
}

func TestHandleUnknownMethod(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, false, nil, nil)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`"1"`), Method: "swarm.nonexistent"}
	line, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.handle(context.Background(), line)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestHandleMalformedJSON(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	s := NewServer(pub, false, nil, nil)
	resp := s.handle(context.Background(), []byte(`{not json`))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32700, resp.Error.Code)
}

func TestHandleRecordsMetrics(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	s := NewServer(pub, false, m, nil)
	s.Register("ping", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "pong", nil
	})

	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`"1"`), Method: "ping"}
	line, err := json.Marshal(req)
	require.NoError(t, err)
	resp := s.handle(context.Background(), line)
	require.Nil(t, resp.Error)

	badReq := Request{JSONRPC: "2.0", ID: json.RawMessage(`"2"`), Method: "missing"}
	line, err = json.Marshal(badReq)
	require.NoError(t, err)
	resp = s.handle(context.Background(), line)
	require.NotNil(t, resp.Error)

	var pingRequests, missingErrors dto.Metric
	require.NoError(t, m.RPCRequests.WithLabelValues("ping").Write(&pingRequests))
	require.Equal(t, float64(1), pingRequests.GetCounter().GetValue())
	require.NoError(t, m.RPCErrors.WithLabelValues("missing").Write(&missingErrors))
	require.Equal(t, float64(1), missingErrors.GetCounter().GetValue())
}

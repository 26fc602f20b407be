// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpc implements the local RPC surface of spec §6: newline-
// delimited JSON-RPC 2.0 over a loopback stream socket, with every
// request's signature verified against the locally held agent key in
// hardened mode. The source this spec was distilled from carries an
// unverified signature field; per the spec's Open Questions
// resolution (§9), that omission is not replicated here.
package rpc

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/metrics"
	"github.com/luxfi/holon/internal/swarmlog"
)

// Request is a newline-delimited JSON-RPC 2.0 request, extended with a
// signature field per spec §6.
type Request struct {
	JSONRPC   string          `json:"jsonrpc"`
	ID        json.RawMessage `json:"id"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
	Signature []byte          `json:"signature,omitempty"`
}

// Response is the matching JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC 2.0 error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MethodHandler processes the params of one recognized method and
// returns a result or an error.
type MethodHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Server is the connector's loopback JSON-RPC listener.
type Server struct {
	log      swarmlog.Logger
	hardened bool
	agentPub ed25519.PublicKey
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	handlers map[string]MethodHandler

	listener net.Listener
}

// NewServer constructs an RPC server. When hardened is true, every
// request must carry a signature verifiable against agentPub; in
// non-hardened mode (development only) unsigned requests are allowed.
// m may be nil, in which case request/error counts are not recorded.
func NewServer(agentPub ed25519.PublicKey, hardened bool, m *metrics.Metrics, log swarmlog.Logger) *Server {
	if log == nil {
		log = swarmlog.NoOp()
	}
	return &Server{
		log:      log,
		hardened: hardened,
		agentPub: agentPub,
		metrics:  m,
		handlers: make(map[string]MethodHandler),
	}
}

// Register binds method to h. Call once per method in spec §6's table
// (swarm.inject_task, swarm.propose_plan, ...).
func (s *Server) Register(method string, h MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// ListenAndServe listens on a unix loopback socket at path and serves
// requests until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, network, address string) error {
	ln, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handle(ctx, line)

		data, err := json.Marshal(resp)
		if err != nil {
			s.log.Error("failed marshaling rpc response", swarmlog.Err(err))
			continue
		}
		writer.Write(data)
		writer.WriteByte('\n')
		writer.Flush()
	}
}

func (s *Server) handle(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, -32700, "parse error")
	}

	if s.hardened {
		if len(req.Signature) == 0 {
			return errorResponse(req.ID, -32000, "signature required")
		}
		payload := signedPayload(req)
		if err := identity.Verify(s.agentPub, payload, req.Signature); err != nil {
			return errorResponse(req.ID, -32000, "invalid signature")
		}
	}

	if s.metrics != nil {
		s.metrics.RPCRequests.WithLabelValues(req.Method).Inc()
	}

	s.mu.RLock()
	h, ok := s.handlers[req.Method]
	s.mu.RUnlock()
	if !ok {
		if s.metrics != nil {
			s.metrics.RPCErrors.WithLabelValues(req.Method).Inc()
		}
		return errorResponse(req.ID, -32601, fmt.Sprintf("method not found: %s", req.Method))
	}

	result, err := h(ctx, req.Params)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RPCErrors.WithLabelValues(req.Method).Inc()
		}
		return errorResponse(req.ID, -32001, err.Error())
	}

	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// signedPayload is the canonical bytes an RPC request's signature
// covers: method and params, matching the envelope layer's
// method/params canonicalization.
func signedPayload(req Request) []byte {
	payload, _ := json.Marshal(struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}{Method: req.Method, Params: req.Params})
	return payload
}

func errorResponse(id json.RawMessage, code int, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ResponseError{Code: code, Message: msg},
	}
}

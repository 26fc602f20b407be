// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command holonctl is the operator's line tool for talking to a local
// holond connector over its loopback JSON-RPC socket: inject a task,
// inspect a board's status, or watch a vote's IRV rounds.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
)

func main() {
	var (
		socket = flag.String("rpc-socket", "holon.sock", "unix socket path of the target connector")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	method, paramArgs := args[0], args[1:]
	params, err := buildParams(method, paramArgs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "holonctl:", err)
		os.Exit(1)
	}

	result, err := call(*socket, method, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, "holonctl:", err)
		os.Exit(1)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(pretty))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: holonctl [-rpc-socket path] <method> [key=value ...]

methods:
  inject-task       task_id=<id> description=<text>
  get-task          task_id=<id>
  get-board-status  task_id=<id>
  get-voting-state  task_id=<id>
  get-ballots       task_id=<id>
  get-irv-rounds    task_id=<id>
  get-deliberation  task_id=<id>
  receive-task      did=<id>`)
}

var methodAliases = map[string]string{
	"inject-task":      "swarm.inject_task",
	"get-task":         "swarm.get_task",
	"get-board-status": "swarm.get_board_status",
	"get-voting-state": "swarm.get_voting_state",
	"get-ballots":      "swarm.get_ballots",
	"get-irv-rounds":   "swarm.get_irv_rounds",
	"get-deliberation": "swarm.get_deliberation",
	"receive-task":     "swarm.receive_task",
}

func buildParams(method string, kvArgs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(kvArgs))
	for _, kv := range kvArgs {
		var key, value string
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				key, value = kv[:i], kv[i+1:]
				break
			}
		}
		if key == "" {
			return nil, fmt.Errorf("malformed argument %q, want key=value", kv)
		}
		params[key] = value
	}
	if _, ok := methodAliases[method]; !ok {
		return nil, fmt.Errorf("unknown method %q", method)
	}
	return params, nil
}

// rpcRequest and rpcResponse mirror internal/rpc's wire shapes; they
// are redeclared here rather than imported so holonctl stays a
// standalone client with no dependency on the connector's internals.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func call(socket, alias string, params map[string]interface{}) (interface{}, error) {
	method := methodAliases[alias]

	conn, err := net.DialTimeout("unix", socket, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socket, err)
	}
	defer conn.Close()

	req := rpcRequest{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("connector closed the connection without a response")
	}

	var resp rpcResponse
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	var result interface{}
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

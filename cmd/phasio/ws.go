/* Copyright 2025-2026 Phasic Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

// WebSocketCoupling drives a Service from a WebSocket server:
// protocol messages are read from the connection, and responses are
// written back.
type WebSocketCoupling struct {
	URL string

	conn *websocket.Conn
}

// NewWebSocketCoupling builds a coupling from its own flag set.
//
// Pass nil args to get just the flag set (for usage messages).
func NewWebSocketCoupling(args []string) (*WebSocketCoupling, *flag.FlagSet) {
	c := &WebSocketCoupling{}
	fs := flag.NewFlagSet("ws", flag.ExitOnError)
	fs.StringVar(&c.URL, "url", "ws://localhost:8080", "Target URL for WebSocket server")
	if args == nil {
		return nil, fs
	}
	fs.Parse(args)
	return c, fs
}

// Start dials the server and processes messages until the context is
// done or the connection drops.
func (c *WebSocketCoupling) Start(ctx context.Context, svc *Service) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return err
	}

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	c.conn = conn
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, bs, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		if len(bs) == 0 {
			continue
		}

		resp := svc.ProcessMessage(ctx, bs)
		js, err := json.Marshal(resp)
		if err != nil {
			log.Printf("ws marshal error %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, js); err != nil {
			return err
		}
	}
}

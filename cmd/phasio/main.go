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

// Package main is an interactive shell (and MQTT/WebSocket head) for a
// phasic machine, in the spirit of a debugger: load a configuration,
// step it, poke vars, watch the tuples.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

func main() {
	var (
		coupling = flag.String("io", "std", `IO coupling: "std", "mq", or "ws"`)
		config   = flag.String("config", "", "Optional configuration filename to load at startup")
		dbFile   = flag.String("db", "", "Optional bbolt file for named configurations")
		limit    = flag.Int("limit", 100, "Walk limit for 'run'")
		stamps   = flag.Bool("timestamps", false, "Prepend timestamps to output")
		echo     = flag.Bool("e", false, "Echo input")
		help     = flag.Bool("h", false, "Get usage")
	)

	flag.Parse()

	if *help {
		flag.PrintDefaults()

		fmt.Fprintf(os.Stderr, "\n-io mq:\n\n")
		_, fs := NewMQTTCoupling(nil)
		fs.PrintDefaults()

		fmt.Fprintf(os.Stderr, "\n-io ws:\n\n")
		_, fs = NewWebSocketCoupling(nil)
		fs.PrintDefaults()

		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *Store
	if *dbFile != "" {
		store = NewStore(*dbFile)
		if err := store.Open(); err != nil {
			log.Fatal(err)
		}
		defer store.Close()
	}

	svc := NewService(os.Stdout, store, *limit)
	svc.Timestamps = *stamps
	svc.timers = NewTimers(svc.emitter)
	defer svc.timers.Shutdown()

	if *config != "" {
		if err := svc.LoadFilename(*config); err != nil {
			log.Fatal(err)
		}
	}

	switch *coupling {
	case "std":
		if err := repl(ctx, svc, os.Stdin, *echo); err != nil {
			log.Fatal(err)
		}
	case "mq":
		c, _ := NewMQTTCoupling(flag.Args())
		if err := c.Start(ctx, svc); err != nil {
			log.Fatal(err)
		}
	case "ws":
		c, _ := NewWebSocketCoupling(flag.Args())
		if err := c.Start(ctx, svc); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown -io %q", *coupling)
	}
}

func repl(ctx context.Context, svc *Service, in io.Reader, echo bool) error {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if echo {
			fmt.Print(line)
		}
		if line == "quit\n" {
			return nil
		}
		svc.Process(ctx, line)
	}
}

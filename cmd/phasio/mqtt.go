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
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTCoupling drives a Service from an MQTT broker: protocol
// messages arrive on a subscription, and responses are published.
type MQTTCoupling struct {
	Client   mqtt.Client
	SubTopic string
	PubTopic string
	Quiesce  uint

	svc *Service
}

// NewMQTTCoupling builds a coupling from its own flag set.
//
// Pass nil args to get just the flag set (for usage messages).
func NewMQTTCoupling(args []string) (*MQTTCoupling, *flag.FlagSet) {
	var (
		// Follow mosquitto_sub command line args.
		fs = flag.NewFlagSet("mq", flag.ExitOnError)

		broker    = fs.String("h", "tcp://localhost", "Broker hostname")
		port      = fs.Int("p", 1883, "Broker port")
		clientId  = fs.String("i", "phasio", "Client id")
		keepAlive = fs.Int("k", 10, "Keep-alive in seconds")
		userName  = fs.String("u", "", "Username")
		password  = fs.String("P", "", "Password")
		clean     = fs.Bool("c", true, "Clean session")
		reconnect = fs.Bool("reconnect", false, "Automatically attempt to reconnect")
		quiesce   = fs.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")

		subTopic = fs.String("t", "phasio/in", "Subscription topic")
		pubTopic = fs.String("pub", "phasio/out", "Topic for responses")
	)

	if args == nil {
		return nil, fs
	}

	fs.Parse(args)

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))
	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	return &MQTTCoupling{
		Client:   mqtt.NewClient(opts),
		SubTopic: *subTopic,
		PubTopic: *pubTopic,
		Quiesce:  uint(*quiesce),
	}, fs
}

// Start connects, subscribes, and processes messages until the context
// is done.
func (c *MQTTCoupling) Start(ctx context.Context, svc *Service) error {
	c.svc = svc

	if t := c.Client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	handler := func(client mqtt.Client, m mqtt.Message) {
		resp := svc.ProcessMessage(ctx, m.Payload())
		js, err := json.Marshal(resp)
		if err != nil {
			log.Printf("mqtt marshal error %v", err)
			return
		}
		if t := client.Publish(c.PubTopic, 0, false, js); t.Wait() && t.Error() != nil {
			log.Printf("mqtt publish error %v", t.Error())
		}
	}

	if t := c.Client.Subscribe(c.SubTopic, 0, handler); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	<-ctx.Done()

	c.Client.Disconnect(c.Quiesce)
	return nil
}

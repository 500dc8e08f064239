/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package main is a service that generates random text on demand, on
// schedules, and over websockets.
//
// Definitions can be changed while the service runs via HTTP.  See
// Service.Handler for the API.
package main

import (
	"context"
	"flag"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/interpreters"
	"github.com/Comcast/randodo/sio"
	"github.com/Comcast/randodo/storage"
	"github.com/Comcast/randodo/storage/bolt"

	"github.com/jsccast/yaml"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		httpPort      = flag.String("h", ":8080", "HTTP service port")
		storeFile     = flag.String("p", "", "optional filename for persistence")
		seedFile      = flag.String("s", "", "optional definitions file to load at startup")
		schedulesFile = flag.String("c", "", "optional YAML file of schedules")
		websockets    = flag.Bool("w", false, "serve a websocket firehose at /ws")
		depth         = flag.Int("depth", core.DefaultMaxDepth, "maximum reference depth")
		maxN          = flag.Int("max", 1000, "maximum samples per request")
		seed          = flag.Int64("seed", 0, "seed for a deterministic source (0 for the clock)")
		record        = flag.Bool("r", false, "record generated samples")
		verbose       = flag.Bool("v", false, "verbose logging")

		mqttConf    = &sio.MQTTConf{}
		mqttTopic   = flag.String("mqtt-topic", "randodo/%s", "MQTT topic (%s is replaced by the generator name)")
		mqttQoS     = flag.Int("mqtt-qos", 0, "MQTT QoS")
		mqttJSON    = flag.Bool("mqtt-json", false, "publish Samples as JSON")
		mqttTimeout = flag.Duration("mqtt-timeout", 5*time.Second, "MQTT publish timeout")
	)

	flag.StringVar(&mqttConf.Broker, "mqtt-broker", "", "optional MQTT broker URL for publishing samples")
	flag.IntVar(&mqttConf.Port, "mqtt-port", 0, "MQTT broker port")
	flag.StringVar(&mqttConf.ClientId, "mqtt-id", "", "MQTT client id (default is random)")
	flag.StringVar(&mqttConf.UserName, "mqtt-user", "", "MQTT user name")
	flag.StringVar(&mqttConf.Password, "mqtt-password", "", "MQTT password")
	flag.StringVar(&mqttConf.CertFilename, "mqtt-cert", "", "MQTT client cert filename")
	flag.StringVar(&mqttConf.KeyFilename, "mqtt-key", "", "MQTT client key filename")
	flag.StringVar(&mqttConf.CAFilename, "mqtt-ca", "", "MQTT CA certs filename")
	flag.BoolVar(&mqttConf.Insecure, "mqtt-insecure", false, "skip MQTT broker cert verification")
	flag.BoolVar(&mqttConf.Reconnect, "mqtt-reconnect", true, "MQTT auto-reconnect")
	flag.BoolVar(&mqttConf.Clean, "mqtt-clean", true, "MQTT clean session")
	flag.DurationVar(&mqttConf.KeepAlive, "mqtt-keepalive", 30*time.Second, "MQTT keep-alive")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store storage.Storage
	if *storeFile == "" {
		store = storage.NewMemStorage()
	} else {
		b, err := bolt.NewStorage(*storeFile)
		if err != nil {
			panic(err)
		}
		b.Debug = *verbose
		store = b
	}
	if err := store.Open(ctx); err != nil {
		panic(err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Printf("storage Close error: %v", err)
		}
	}()

	s := NewService(store)
	s.Interpreters = interpreters.Standard()
	s.MaxDepth = *depth
	s.MaxN = *maxN
	s.Record = *record
	s.Debug = *verbose
	if *seed != 0 {
		s.SourceMaker = core.Shared(core.NewLockedSource(core.NewLCG(uint64(*seed))))
	}

	if err := s.Load(ctx); err != nil {
		panic(err)
	}

	if *seedFile != "" {
		ds, err := defs.ReadFile(*seedFile)
		if err != nil {
			panic(err)
		}
		if err = s.Seed(ctx, ds); err != nil {
			panic(err)
		}
	}

	var emitters sio.Emitters

	var firehose *sio.Firehose
	if *websockets {
		firehose = sio.NewFirehose(s.Table)
		firehose.MaxDepth = *depth
		firehose.Debug = *verbose
		emitters = append(emitters, firehose)
	}

	if mqttConf.Broker != "" {
		if mqttConf.ClientId == "" {
			mqttConf.ClientId = "randodod-" + core.Gensym(core.NewRandSource(time.Now().UnixNano()), 8)
		}
		client, err := mqttConf.Connect(ctx)
		if err != nil {
			panic(err)
		}
		defer client.Disconnect(1000)
		emitters = append(emitters, &sio.MQTT{
			Client:  client,
			Topic:   *mqttTopic,
			QoS:     byte(*mqttQoS),
			JSON:    *mqttJSON,
			Timeout: *mqttTimeout,
		})
	}

	if 0 < len(emitters) {
		s.Emitter = emitters
	}

	if *schedulesFile != "" {
		bs, err := ioutil.ReadFile(*schedulesFile)
		if err != nil {
			panic(err)
		}
		var schedules []*sio.Schedule
		if err = yaml.Unmarshal(bs, &schedules); err != nil {
			panic(err)
		}
		scheduler := &sio.Scheduler{
			Table:    s.Table,
			Emitter:  sio.EmitterFunc(s.Emit),
			MaxDepth: *depth,
			Debug:    *verbose,
		}
		if err = scheduler.Start(ctx, schedules); err != nil {
			panic(err)
		}
		defer scheduler.Wait()
	}

	server := &http.Server{
		Addr:    *httpPort,
		Handler: s.Handler(firehose),
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}
	}()

	log.Printf("serving HTTP at %s", *httpPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(err)
	}

	log.Printf("main terminating")
}

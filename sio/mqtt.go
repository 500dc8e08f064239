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

package sio

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"strings"
	"time"

	"github.com/Comcast/randodo/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of an mqtt.Client that MQTT needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT is an Emitter that publishes Samples to an MQTT broker.
type MQTT struct {
	Client Publisher

	// Topic is the topic for published Samples.  Any "%s" is
	// replaced by the generator name.
	Topic string

	QoS    byte
	Retain bool

	// JSON publishes the whole Sample as JSON.  Otherwise just
	// the text is published.
	JSON bool

	// Timeout bounds the wait for each publication.  Zero means
	// no waiting beyond the given context.
	Timeout time.Duration
}

// PublishTimeout occurs when the broker doesn't acknowledge a
// publication in time.
var PublishTimeout = errors.New("MQTT publish timeout")

func (m *MQTT) topic(name string) string {
	topic := m.Topic
	if topic == "" {
		topic = "randodo/%s"
	}
	return strings.Replace(topic, "%s", name, -1)
}

// Emit publishes the Sample.
func (m *MQTT) Emit(ctx context.Context, s *Sample) error {
	var payload []byte
	if m.JSON {
		payload = []byte(util.JS(s))
	} else {
		payload = []byte(s.Text)
	}

	t := m.Client.Publish(m.topic(s.Name), m.QoS, m.Retain, payload)

	if m.Timeout <= 0 {
		t.Wait()
		return t.Error()
	}

	done := make(chan bool)
	go func() {
		done <- t.WaitTimeout(m.Timeout)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ok := <-done:
		if !ok {
			return PublishTimeout
		}
		return t.Error()
	}
}

// MQTTConf is enough to make an MQTT client.
//
// The fields follow mosquitto_pub's command line args.
type MQTTConf struct {
	Broker    string
	Port      int
	ClientId  string
	KeepAlive time.Duration
	UserName  string
	Password  string
	Reconnect bool
	Clean     bool

	CertFilename string
	KeyFilename  string
	CAFilename   string
	Insecure     bool
}

// ClientOptions makes mqtt.ClientOptions.
func (c *MQTTConf) ClientOptions() (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions()

	broker := c.Broker
	if broker == "" {
		broker = "tcp://localhost"
	}
	if c.Port != 0 {
		broker = fmt.Sprintf("%s:%d", broker, c.Port)
	}
	opts.AddBroker(broker)
	opts.SetClientID(c.ClientId)
	if 0 < c.KeepAlive {
		opts.SetKeepAlive(c.KeepAlive)
	}
	opts.SetPingTimeout(10 * time.Second)

	opts.Username = c.UserName
	opts.Password = c.Password
	opts.AutoReconnect = c.Reconnect
	opts.CleanSession = c.Clean

	var rootCAs *x509.CertPool
	if rootCAs, _ = x509.SystemCertPool(); rootCAs == nil {
		rootCAs = x509.NewCertPool()
	}
	if c.CAFilename != "" {
		certs, err := ioutil.ReadFile(c.CAFilename)
		if err != nil {
			return nil, err
		}
		if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
			log.Println("No certs appended, using system certs only")
		}
	}

	tlsConf := &tls.Config{
		InsecureSkipVerify: c.Insecure,
		RootCAs:            rootCAs,
	}

	if c.KeyFilename != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFilename, c.KeyFilename)
		if err != nil {
			return nil, err
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}

	opts.SetTLSConfig(tlsConf)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	return opts, nil
}

// Connect makes a client and connects it to the broker.
func (c *MQTTConf) Connect(ctx context.Context) (mqtt.Client, error) {
	opts, err := c.ClientOptions()
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(opts)
	t := client.Connect()

	done := make(chan struct{})
	go func() {
		t.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	if err := t.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

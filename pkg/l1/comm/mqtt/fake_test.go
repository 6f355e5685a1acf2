package mqtt

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	paho.Client

	lock         sync.Mutex
	disconnected bool
	pubs         []published
	subs         []string
	unsubs       []string
	callback     paho.MessageHandler
}

func (c *fakeClient) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return !c.disconnected
}

func (c *fakeClient) Connect() paho.Token {
	return &paho.DummyToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.lock.Lock()
	c.disconnected = true
	c.lock.Unlock()
}

func (c *fakeClient) Publish(topic string, qos byte, retain bool, payload interface{}) paho.Token {
	c.lock.Lock()
	c.pubs = append(c.pubs, published{topic: topic, qos: qos, retain: retain, payload: payload.([]byte)})
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	c.subs = append(c.subs, topic)
	c.callback = callback
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	c.lock.Lock()
	c.unsubs = append(c.unsubs, topics...)
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) published() []published {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]published(nil), c.pubs...)
}

type fakeMessage struct {
	paho.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

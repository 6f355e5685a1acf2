package mqtt

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/pinvault/pkg/l0/session"
	"github.com/robotalks/pinvault/pkg/l1/msgs"
)

// Topics relative to <prefix><device-id>/.
const (
	TopicSession = "session"
	TopicStatus  = "status"
)

// Reporter publishes vault telemetry by observing sessions, publishing
// never blocks nor fails the vault.
// The indicator is on-board output only: nothing published depends on the
// PIN, neither blinks nor the time spent blinking. So the bound event,
// which precedes the blinks, isn't published; pin-revealed is.
type Reporter struct {
	Queue    *Queue
	DeviceID string
}

// NewReporter creates a Reporter for the broker with a will
// marking the device offline.
func NewReporter(brokerURL, deviceID string) (*Reporter, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	r := &Reporter{DeviceID: deviceID}
	will, err := msgs.Encode(&msgs.DeviceStatus{Id: deviceID})
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+r.topic(TopicStatus), will, 1, true)
	r.Queue = NewQueue(opts, topicPrefix)
	r.Queue.OnConnect = func(*Queue) { r.publishStatus(true) }
	return r, nil
}

// Name implements Named.
func (r *Reporter) Name() string {
	return "mqtt-reporter"
}

// Run implements Runnable. A broker which can't be reached only
// disables telemetry.
func (r *Reporter) Run(ctx context.Context) error {
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		glog.Warningf("telemetry disabled, mqtt connect: %v", err)
		<-ctx.Done()
		return ctx.Err()
	}
	<-ctx.Done()
	if token := r.publishStatus(false); token != nil {
		token.WaitTimeout(time.Second)
	}
	r.Queue.Close()
	return ctx.Err()
}

// SessionEvent implements session.Observer.
func (r *Reporter) SessionEvent(e session.Event) {
	if e.Kind == session.EventBound {
		return
	}
	r.publish(TopicSession, &msgs.SessionEvent{
		Session:        e.Session,
		Kind:           string(e.Kind),
		Phase:          e.Phase.String(),
		FailedAttempts: e.FailedAttempts,
	}, false)
}

func (r *Reporter) topic(name string) string {
	return r.DeviceID + "/" + name
}

func (r *Reporter) publishStatus(online bool) paho.Token {
	return r.publish(TopicStatus, &msgs.DeviceStatus{Id: r.DeviceID, Online: online}, true)
}

func (r *Reporter) publish(name string, msg msgs.SerializableMessage, retain bool) paho.Token {
	data, err := msgs.Encode(msg)
	if err != nil {
		glog.Warningf("encode %s: %v", name, err)
		return nil
	}
	if !r.Queue.Client.IsConnected() {
		glog.V(2).Infof("drop %s: not connected", name)
		return nil
	}
	if retain {
		return r.Queue.PubWith(r.topic(name), data, 1, true)
	}
	return r.Queue.Pub(r.topic(name), data)
}

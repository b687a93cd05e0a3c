package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "vizgate"

// Topics builds vizgate MQTT topics below a configurable prefix.
//
//	topics := mqtt.NewTopics("vizgate")
//	topics.Event("project.created") // "vizgate/events/project.created"
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Trailing slashes are dropped.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Event returns the topic for one event type.
//
// Example: vizgate/events/view.purged
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/events/%s", t.prefix, eventType)
}

// AllEvents returns a pattern matching every event topic.
//
// Pattern: vizgate/events/+
func (t Topics) AllEvents() string {
	return t.prefix + "/events/+"
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: vizgate/system/status
func (t Topics) SystemStatus() string {
	return t.prefix + "/system/status"
}

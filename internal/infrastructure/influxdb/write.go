package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	// measurementAccessDecisions holds one point per access resolution.
	measurementAccessDecisions = "access_decisions"

	// measurementAccountOperations holds one point per lifecycle operation.
	measurementAccountOperations = "account_operations"
)

// RecordDecision writes one access decision. source is session, view or
// default; decision is granted, denied or no_active_project; reason is the
// error kind for denials and empty otherwise.
//
// The write is non-blocking; points are batched and sent asynchronously.
func (c *Client) RecordDecision(source, decision, reason string) {
	tags := map[string]string{
		"source":   source,
		"decision": decision,
	}
	if reason != "" {
		tags["reason"] = reason
	}
	c.WritePoint(measurementAccessDecisions, tags, map[string]interface{}{"count": 1})
}

// RecordOperation writes one account operation (register, confirm, login)
// with its outcome status.
func (c *Client) RecordOperation(operation, status string) {
	c.WritePoint(measurementAccountOperations,
		map[string]string{"operation": operation, "status": status},
		map[string]interface{}{"count": 1},
	)
}

// WritePoint writes a custom point stamped with the current time.
//
// Example:
//
//	client.WritePoint("access_decisions",
//	    map[string]string{"source": "view", "decision": "granted"},
//	    map[string]interface{}{"count": 1})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}

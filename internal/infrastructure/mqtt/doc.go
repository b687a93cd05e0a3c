// Package mqtt publishes vizgate account events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Event publishing with QoS and payload validation
//   - Last Will and Testament (LWT) on <prefix>/system/status
//
// Events are fire-and-forget notifications for other services (indexers,
// dashboards). They never gate an account operation.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishEvent("project.created", payload)
package mqtt

// Package influxdb records vizgate access metrics in InfluxDB.
//
// Every access resolution writes one point to the access_decisions
// measurement, tagged with its source (session, view, default) and decision.
// Lifecycle operations write to account_operations. Writes are non-blocking
// and batched per config.yaml (batch_size, flush_interval).
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without metrics
//	}
//	defer client.Close()
//
//	client.RecordDecision("view", "granted", "")
package influxdb

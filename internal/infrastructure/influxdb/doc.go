// Package influxdb records circuit editing telemetry in InfluxDB 2.x.
//
// Points go through the client library's asynchronous write API, so a
// slow or absent server never blocks an edit. Two measurements are kept:
//
//	circuit_edit   tags: event, element_type   fields: count, nodes
//	project_save   tags: project               fields: elements
//
// Connect pings the server once and fails if it is unreachable or reports
// itself unhealthy. After that, failed batches are handed to the SetOnError
// callback wrapped in ErrWriteFailed; nothing is retried.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	client.WriteCircuitEdit("moveElement", "Wire", 2, time.Now())
package influxdb

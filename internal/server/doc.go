// Package server implements a WebSocket measurement streaming server.
//
// This package exposes live SDS011 readings to dashboards and scripts: each
// measurement is broadcast as a JSON object to every connected WebSocket
// client. The server never talks to the sensor itself; it consumes the
// measurement channel produced by a sensor.Session, keeping the serial
// port's single-owner discipline intact.
//
// # Endpoints
//
//   - GET /ws       WebSocket upgrade; the server then pushes one JSON
//     message per measurement
//   - GET /healthz  liveness probe, returns 200 and the client count
//
// # Message Format
//
//	{"timestamp":"2026-08-31T10:30:45+02:00","pm25":12.4,"pm10":21.7,"device_id":41312}
//
// # Slow Clients
//
// Each client gets a small buffered queue. A client that cannot keep up
// with the sensor's reporting rate is disconnected rather than allowed to
// stall the broadcast loop.
//
// # Usage Example
//
//	srv := server.New(&server.Config{ListenAddr: "localhost:8017"})
//	go srv.Broadcast(ctx, session.Stream(ctx))
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

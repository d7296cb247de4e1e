// Package health reports the readiness of media proxy components.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy.
//
// The proxy itself is a Checker: it reports Degraded until the real video
// service has been constructed and Unhealthy after a failed construction.
// Probe combines several checkers into one Report:
//
//	report := health.Probe(ctx, 2*time.Second, videoProxy, remoteClient)
//	if report.Err != nil {
//	    log.Printf("media proxy not ready: %v", report.Err)
//	}
package health

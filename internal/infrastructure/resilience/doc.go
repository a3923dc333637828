/*
Package resilience provides a circuit breaker for flaky downstreams.

# Overview

The span pipeline exports to an external trace agent that may be down or
slow. The breaker keeps a dead agent from dragging every flush cycle
through its dial timeout: after enough consecutive failures the circuit
opens and exports fail immediately until the agent recovers.

# Usage

	breaker := resilience.New("trace-agent", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(func() error {
		return client.Export(ctx, req)
	})

# States

  - Closed: Normal operation, requests pass through
  - Open: Downstream unavailable, requests fail immediately
  - Half-Open: Testing if the downstream recovered, limited requests allowed

# Pattern

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience

// Package harness is a conformance-testing framework for rtengine
// scenarios: YAML files describing a sequence of CREATE STREAM/SELECT
// statements, rows to ingest, flows to watch, and assertions on the
// resulting console deliveries, flow states, and submit messages.
//
// Unlike the teacher's internal/harness (which manufactures completions
// directly from a scenario's expect clause, a "tautology risk" its own
// doc comment calls out), Run drives a real engine.Engine end to end:
// every scenario genuinely exercises Submit, Ingest, WatchFlow, and the
// scheduler's data-work loop, so an assertion failure reflects an actual
// engine defect rather than a mismatch between two copies of the same
// expectation.
//
// # Scenario format
//
//	name: orders_filter
//	description: "price filter only forwards rows above threshold"
//	setup:
//	  - CREATE STREAM orders (id INT, price DOUBLE)
//	submit:
//	  - query: "SELECT id, price FROM orders WHERE price > 10"
//	    as: main
//	ingest:
//	  - stream: orders
//	    row: { id: 1, price: 42.5 }
//	watch: [main]
//	assertions:
//	  - type: console_count
//	    flow: main
//	    count: 1
package harness

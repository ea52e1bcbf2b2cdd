// Package combined holds benchmarks that run the queue together with the
// polling layer: a consumer hot loop that checks cancellation and a ticker
// around every Pop, two-goroutine pipelines, and many-producer fan-in
// compared against the sharded go-lock-free-ring.
//
// These capture the cumulative cost of the pieces a real consumer loop
// combines, which isolated micro-benchmarks miss.
package combined

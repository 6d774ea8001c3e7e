// Package webhook receives inbound Telnyx webhooks and keeps a bounded
// in-memory history of them.
//
// The receiver acknowledges every request with 200 regardless of payload
// shape so Telnyx never retries into a failure loop. Events are stored in a
// fixed-capacity ring buffer with monotonically increasing sequence numbers;
// when full, the oldest event is evicted. History is observational only and
// is lost on restart.
package webhook

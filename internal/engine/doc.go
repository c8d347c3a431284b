// Package engine runs the bot's event loop.
//
// Transports enqueue inbound envelopes; a single Run goroutine dequeues them
// in FIFO order, hands each event to the router and delivers the resulting
// messages back through a Sender. Processing one envelope at a time is what
// serializes every user's stream and keeps catalog writes ordered.
//
// Each envelope is stamped on entry with a UUIDv7 id and a sequence number
// from a logical Clock. Both appear in every log line about the envelope.
//
// Errors never stop the loop. Rejected requests are logged at Info, failed
// saves at Error, and a transport reporting ErrNotModified (the re-rendered
// message is identical to the one shown) is logged at Debug and otherwise
// treated as success.
package engine

// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers activation mail.
package queue

// ActivationEmailName is the durable queue carrying activation mail events.
const ActivationEmailName = "user.activation-email"

// ActivationEmailEvent is published when a registration succeeds. It
// carries everything the mail worker needs to render and deliver the
// activation message without querying the primary database. The full
// activation token is never part of the event; only the numeric code
// travels by mail.
type ActivationEmailEvent struct {
    EventID     string `json:"event_id"`
    Name        string `json:"name"`
    Email       string `json:"email"`
    Code        string `json:"activation_code"`
    RequestedAt string `json:"requested_at"`
}

// Package queue defines message payloads exchanged over the message broker
// plus the publisher and consumer that move them.
package queue

// Purposes an email request can carry. The consumer picks the message
// template from this value.
const (
	EmailPurposeVerify = "verify"
	EmailPurposeReset  = "reset"
)

// EmailRequestedEvent is published whenever the auth service wants a
// verification or reset email delivered. It contains everything the mail
// consumer needs to build and send the message without querying the
// primary database. Delivery is fire-and-forget from the publisher's
// point of view: a lost or failed email never fails the request that
// asked for it.
type EmailRequestedEvent struct {
	Purpose     string `json:"purpose"`
	Recipient   string `json:"recipient"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}

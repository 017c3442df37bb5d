package events

// Topic constants for domain events emitted by the payment service.
const (
	TopicCheckoutSessionCreated = "checkout.session.created"
	TopicConnectAccountCreated  = "connect.account.created"
	TopicSubscriptionActivated  = "tenant.subscription.activated"
	TopicMembershipActivated    = "membership.activated"
	TopicActivationDispatched   = "activation.dispatched"
	TopicActivationFailed       = "activation.dispatch_failed"
)

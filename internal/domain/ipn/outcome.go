package ipn

// Outcome is the terminal result of one notification. It is used as a metric
// label and in the audit trail, never returned to the notifier.
type Outcome string

const (
	OutcomeInvoiced      Outcome = "invoiced"
	OutcomeCanceled      Outcome = "canceled"
	OutcomeUnchanged     Outcome = "unchanged" // no-op status or transition already applied
	OutcomeUnknownStatus Outcome = "unknown_status"
	OutcomeOtherMethod   Outcome = "other_payment_method"

	OutcomeIgnored          Outcome = "ignored"
	OutcomeInvalidSignature Outcome = "invalid_signature"

	OutcomeMissingCredentials Outcome = "missing_credentials"
	OutcomePaymentNotFound    Outcome = "payment_not_found"
	OutcomeFetchFailed        Outcome = "fetch_failed"
	OutcomeMissingReference   Outcome = "missing_external_reference"
	OutcomeOrderNotFound      Outcome = "order_not_found"
	OutcomeStoreFailed        Outcome = "store_failed"
	OutcomePanic              Outcome = "internal_error"
)

// Mutated reports whether the order changed state.
func (o Outcome) Mutated() bool {
	return o == OutcomeInvoiced || o == OutcomeCanceled
}

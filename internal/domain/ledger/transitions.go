package ledger

import "github.com/creditledger/creditledger/internal/types"

// transition is a subscription status change requested by a workflow.
type transition struct {
	From types.SubscriptionStatus
	To   types.SubscriptionStatus
}

// validTransitions defines all allowed status transitions. Anything not
// listed is rejected as an invalid operation before any state is touched.
var validTransitions = map[transition]bool{
	{types.SubscriptionStatusActive, types.SubscriptionStatusCanceling}: true, // user cancel
	{types.SubscriptionStatusCanceling, types.SubscriptionStatusActive}: true, // lapse to free, or un-cancel
	{types.SubscriptionStatusActive, types.SubscriptionStatusActive}:    true, // plan change in place
	{types.SubscriptionStatusInactive, types.SubscriptionStatusActive}:  true, // reactivation via payment
}

// CanTransition checks whether a status transition is allowed.
func CanTransition(from, to types.SubscriptionStatus) bool {
	return validTransitions[transition{from, to}]
}

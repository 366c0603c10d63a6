package ledger

import "fmt"

// Pool key naming is centralized here so the engines agree on custody
// addressing without importing each other.

func BountyEscrowPool(bountyID uint64) string {
	return fmt.Sprintf("bounty/escrow/%d", bountyID)
}

func SubmissionDepositPool(bountyID, submissionID uint64) string {
	return fmt.Sprintf("bounty/deposit/%d/%d", bountyID, submissionID)
}

func DisputePool(disputeID uint64) string {
	return fmt.Sprintf("dispute/pool/%d", disputeID)
}

// DisputeTreasuryPool holds residual dispute value with no designated payee.
const DisputeTreasuryPool = "dispute/treasury"

func AirdropEscrowPool(airdropID uint64) string {
	return fmt.Sprintf("airdrop/escrow/%d", airdropID)
}

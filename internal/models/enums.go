package models

type ProductType string

const (
	ProductFlight   ProductType = "flight"
	ProductRainfall ProductType = "rainfall"
)

type ApplicationStatus string

const (
	ApplicationPendingApproval ApplicationStatus = "pending_approval"
	ApplicationApproved        ApplicationStatus = "approved"
	ApplicationRejected        ApplicationStatus = "rejected"
	ApplicationPaid            ApplicationStatus = "paid"
)

type PolicyStatus string

const (
	PolicyActive  PolicyStatus = "active"
	PolicyClaimed PolicyStatus = "claimed"
	PolicyExpired PolicyStatus = "expired"
)

type ClaimStatus string

const (
	ClaimSettled ClaimStatus = "settled"
)

type RainfallCondition string

const (
	RainfallBelow RainfallCondition = "below"
	RainfallAbove RainfallCondition = "above"
)

// IsValidApplicationTransition enforces the forward-only application lifecycle:
// pending_approval -> approved|rejected, approved -> paid.
func IsValidApplicationTransition(from, to ApplicationStatus) bool {
	switch from {
	case ApplicationPendingApproval:
		return to == ApplicationApproved || to == ApplicationRejected
	case ApplicationApproved:
		return to == ApplicationPaid
	default:
		return false
	}
}

// IsValidPolicyTransition enforces the monotonic policy lifecycle:
// active -> claimed|expired, terminal thereafter.
func IsValidPolicyTransition(from, to PolicyStatus) bool {
	if from != PolicyActive {
		return false
	}
	return to == PolicyClaimed || to == PolicyExpired
}

func IsValidProductType(p ProductType) bool {
	return p == ProductFlight || p == ProductRainfall
}

func IsValidRainfallCondition(c RainfallCondition) bool {
	return c == RainfallBelow || c == RainfallAbove
}

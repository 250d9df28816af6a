package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationTransitions_ForwardOnly(t *testing.T) {
	assert.True(t, IsValidApplicationTransition(ApplicationPendingApproval, ApplicationApproved))
	assert.True(t, IsValidApplicationTransition(ApplicationPendingApproval, ApplicationRejected))
	assert.True(t, IsValidApplicationTransition(ApplicationApproved, ApplicationPaid))

	assert.False(t, IsValidApplicationTransition(ApplicationApproved, ApplicationRejected))
	assert.False(t, IsValidApplicationTransition(ApplicationApproved, ApplicationPendingApproval))
	assert.False(t, IsValidApplicationTransition(ApplicationRejected, ApplicationApproved))
	assert.False(t, IsValidApplicationTransition(ApplicationPaid, ApplicationApproved))
	assert.False(t, IsValidApplicationTransition(ApplicationPendingApproval, ApplicationPaid),
		"payment requires approval first")
}

func TestPolicyTransitions_TerminalStatesAreFinal(t *testing.T) {
	assert.True(t, IsValidPolicyTransition(PolicyActive, PolicyClaimed))
	assert.True(t, IsValidPolicyTransition(PolicyActive, PolicyExpired))

	assert.False(t, IsValidPolicyTransition(PolicyClaimed, PolicyExpired))
	assert.False(t, IsValidPolicyTransition(PolicyExpired, PolicyClaimed))
	assert.False(t, IsValidPolicyTransition(PolicyClaimed, PolicyActive))
	assert.False(t, IsValidPolicyTransition(PolicyActive, PolicyActive))
}

func TestProductAndConditionValidation(t *testing.T) {
	assert.True(t, IsValidProductType(ProductFlight))
	assert.True(t, IsValidProductType(ProductRainfall))
	assert.False(t, IsValidProductType("cargo"))

	assert.True(t, IsValidRainfallCondition(RainfallBelow))
	assert.True(t, IsValidRainfallCondition(RainfallAbove))
	assert.False(t, IsValidRainfallCondition("sideways"))
}

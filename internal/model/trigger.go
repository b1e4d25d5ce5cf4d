package model

// Expectation declares what a test case expects of the agent.
type Expectation struct {
	ShouldTrigger bool   `json:"should_trigger"`
	ExpectedTools string `json:"expected_tools,omitempty"` // comma-separated
	Category      string `json:"category,omitempty"`
	SecurityFocus bool   `json:"security_focus,omitempty"`
}

// TriggerResult records whether the agent actually acted, plus a
// human-readable justification. Always produced, never partial.
type TriggerResult struct {
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason"`
}

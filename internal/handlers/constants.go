package handlers

// Disclaimer accompanies every piece of case feedback
const Disclaimer = "Educational use only - not for diagnosis or patient management"

// DefaultCaseLimit is how many cases one feed request returns when the
// client does not ask for a specific count
const DefaultCaseLimit = 10

// MaxCaseLimit caps how many cases one feed request may return
const MaxCaseLimit = 50

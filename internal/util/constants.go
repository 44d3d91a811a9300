package util

// SystemUser is recorded as the update user for pipeline writes.
const SystemUser = "ASSESSMENT_RESULTS_API"

package constants

// Static route constants
const (
	APIRoute = "/api"
	V1Route  = "/v1"
	// API base for URL construction in responses and mails
	APIBasePath = "/api/v1"
)

package tenantcontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyTenant        = "TENANT_CONTEXT"
	KeyTenantID      = "tenant_id"
	KeyTenantDomain  = "tenant_domain"
	KeyMatchedSignal = "tenant_matched_signal"
)

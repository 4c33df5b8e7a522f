package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	KeyFromProtected = "from_protected"
)

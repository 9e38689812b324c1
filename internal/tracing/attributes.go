package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys recorded by the signup service.
const (
	CatalogKey   = attribute.Key("signup.catalog")
	RequestIDKey = attribute.Key("signup.request_id")
	RouteKey     = attribute.Key("http.route")
	StatusKey    = attribute.Key("http.response.status_code")
	MethodKey    = attribute.Key("http.request.method")
)

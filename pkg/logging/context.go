package logging

import (
	"context"
)

const (
	EventIDKey     = "event_id"
	IdentityKeyKey = "identity_key"
	ScopeKey       = "scope"
	ServiceNameKey = "service_name"
)

func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, EventIDKey, eventID)
}

func WithIdentityKey(ctx context.Context, identityKey string) context.Context {
	return context.WithValue(ctx, IdentityKeyKey, identityKey)
}

func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetEventID(ctx context.Context) string {
	if eventID, ok := ctx.Value(EventIDKey).(string); ok {
		return eventID
	}
	return ""
}

func GetIdentityKey(ctx context.Context) string {
	if identityKey, ok := ctx.Value(IdentityKeyKey).(string); ok {
		return identityKey
	}
	return ""
}

func GetScope(ctx context.Context) string {
	if scope, ok := ctx.Value(ScopeKey).(string); ok {
		return scope
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if eventID := GetEventID(ctx); eventID != "" {
		fields = append(fields, "event_id", eventID)
	}

	if identityKey := GetIdentityKey(ctx); identityKey != "" {
		fields = append(fields, "identity_key", identityKey)
	}

	if scope := GetScope(ctx); scope != "" {
		fields = append(fields, "scope", scope)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}

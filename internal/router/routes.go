package router

import "fmt"

// Routes maps views to handlers of any type. Resolution never fails: unknown
// or unmapped views resolve to the fallback handler.
type Routes[H any] struct {
	handlers map[View]H
}

// NewRoutes creates a route table. handlers must include the Fallback view.
func NewRoutes[H any](handlers map[View]H) (*Routes[H], error) {
	if _, ok := handlers[Fallback]; !ok {
		return nil, fmt.Errorf("route table has no %s handler", Fallback)
	}
	m := make(map[View]H, len(handlers))
	for v, h := range handlers {
		m[v] = h
	}
	return &Routes[H]{handlers: m}, nil
}

// Resolve returns the handler for the view id, or the fallback handler.
func (rt *Routes[H]) Resolve(id string) H {
	if v, ok := ParseView(id); ok {
		return rt.Handler(v)
	}
	return rt.handlers[Fallback]
}

// Handler returns the handler for v, or the fallback handler if v is unmapped.
func (rt *Routes[H]) Handler(v View) H {
	if h, ok := rt.handlers[v]; ok {
		return h
	}
	return rt.handlers[Fallback]
}

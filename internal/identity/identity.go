// Package identity resolves who is acting on a claim and where from.
package identity

import (
	"context"

	"claimsight/internal/claims/models"
	"claimsight/pkg/requestcontext"
)

// Mock investigator used when no authenticated identity is present.
var DefaultPerson = models.Person{
	Name:      "Alex Doe",
	AvatarURL: "https://placehold.co/100x100.png",
}

// Mock submission coordinate.
var DefaultGeoTag = models.GeoTag{Lat: 34.0522, Lng: -118.2437}

// Provider returns the current investigator.
type Provider interface {
	Current(ctx context.Context) (models.Person, error)
}

// GeoTagger returns the current submission location.
type GeoTagger interface {
	Current(ctx context.Context) (models.GeoTag, error)
}

// Static always returns the same person.
type Static struct {
	Person models.Person
}

func NewStatic(p models.Person) Static { return Static{Person: p} }

func (s Static) Current(context.Context) (models.Person, error) {
	return s.Person, nil
}

// FromContext prefers the authenticated actor set by middleware and falls
// back to another provider for anonymous requests.
type FromContext struct {
	Fallback Provider
}

func (p FromContext) Current(ctx context.Context) (models.Person, error) {
	if actor, ok := requestcontext.Actor(ctx); ok && actor.Name != "" {
		return models.Person{Name: actor.Name, AvatarURL: actor.AvatarURL}, nil
	}
	if p.Fallback == nil {
		return DefaultPerson, nil
	}
	return p.Fallback.Current(ctx)
}

// FixedGeoTagger always returns the same coordinate.
type FixedGeoTagger struct {
	Location models.GeoTag
}

func (g FixedGeoTagger) Current(context.Context) (models.GeoTag, error) {
	return g.Location, nil
}

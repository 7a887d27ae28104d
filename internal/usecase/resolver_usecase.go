package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/koshhq/kosh/internal/domain"
	"github.com/koshhq/kosh/internal/ports"
)

// Resolution is the outcome of resolving a human name to an identifier.
// Either Value is set, or Conflict is true and Message lists the candidates
// for the caller to relay.
type Resolution struct {
	Value    string `json:"value,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Resolver turns free-text names into serial numbers and holder emails for
// the external command-dispatch layer.
type Resolver struct {
	store ports.Store
}

// NewResolver creates a new resolver
func NewResolver(store ports.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveAsset returns the serial number for an asset name. A serial number
// passed alongside wins outright.
func (r *Resolver) ResolveAsset(ctx context.Context, serialNumber, name string) (*Resolution, error) {
	if name == "" {
		return &Resolution{Value: serialNumber}, nil
	}

	assets, err := r.store.Repos().Assets.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(assets) {
	case 0:
		return nil, domain.NewNotFound("no asset found with name " + name)
	case 1:
		return &Resolution{Value: assets[0].SerialNumber}, nil
	}

	var lines []string
	for i, a := range assets {
		lines = append(lines, fmt.Sprintf("%d. %s (%s) - %s", i+1, a.Name, a.Category, a.SerialNumber))
	}
	return &Resolution{
		Conflict: true,
		Message:  "I found multiple assets with the same name:\n" + strings.Join(lines, "\n") + "\nPlease specify which asset you're referring to.",
	}, nil
}

// ResolveHolder returns the email for a holder name. An email passed
// alongside wins outright.
func (r *Resolver) ResolveHolder(ctx context.Context, email, name string) (*Resolution, error) {
	if email != "" {
		return &Resolution{Value: email}, nil
	}
	if name == "" {
		return nil, domain.NewValidation("no name or email provided")
	}

	holders, err := r.store.Repos().Holders.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(holders) {
	case 0:
		return nil, domain.NewNotFound("no holder found with name " + name)
	case 1:
		return &Resolution{Value: holders[0].Email}, nil
	}

	var lines []string
	for i, h := range holders {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, h.Name, h.Email))
	}
	return &Resolution{
		Conflict: true,
		Message:  "I found multiple holders with the same name:\n" + strings.Join(lines, "\n") + "\nPlease specify which holder you're referring to.",
	}, nil
}

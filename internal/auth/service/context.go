package service

import (
	"context"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
)

type (
	actorKey       struct{}
	requestMetaKey struct{}
)

// RequestMeta is the request provenance copied into audit records.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithActor records the authenticated principal acting in ctx.
func WithActor(ctx context.Context, p domain.Principal) context.Context {
	if p.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, p)
}

// ActorFromContext returns the acting principal. System actions have none.
func ActorFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(actorKey{}).(domain.Principal)
	return p, ok
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	if m == (RequestMeta{}) {
		return ctx
	}
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func RequestMetaFromContext(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

func requireActor(ctx context.Context) (domain.Principal, error) {
	p, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Principal{}, ErrActorRequired
	}
	return p, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// IssuedSession is a freshly minted session token.
type IssuedSession struct {
	AccessToken string
	SID         string
	ExpiresAt   time.Time
	Principal   domain.Principal
}

// ExpiresIn is the remaining lifetime in whole seconds.
func (s IssuedSession) ExpiresIn(now time.Time) int {
	return max(int(s.ExpiresAt.Sub(now).Seconds()), 0)
}

// SessionService mints and revokes session tokens. Tokens are stateless, a
// logout only leaves the session id in the revocation store until expiry.
type SessionService struct {
	Keys        *jwtx.KeyManager
	Revocations session.Revocations
	Audit       *AuditRecorder
	Issuer      string
	TTL         time.Duration
	Now         func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue mints a token for p. amr lists the factors that were verified.
func (s *SessionService) Issue(ctx context.Context, p domain.Principal, amr []string) (IssuedSession, error) {
	sid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return IssuedSession{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(jwtx.SessionSubject{
		UserID:      p.ID,
		Name:        p.Name,
		Role:        p.Role.String(),
		TOTPEnabled: p.TOTPEnabled,
	}, sid, amr, s.Issuer, ttl, s.now())

	token, err := s.Keys.Sign(claims)
	if err != nil {
		return IssuedSession{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	slogx.FromContext(ctx).Debug("issued session",
		slog.String("user_id", p.ID),
		slog.Any("amr", amr),
	)

	return IssuedSession{
		AccessToken: token,
		SID:         sid,
		ExpiresAt:   claims.ExpiresAt.Time,
		Principal:   p,
	}, nil
}

// Refresh replaces the session behind old with one carrying p, so flags the
// gate reads are current. The old session id is revoked.
func (s *SessionService) Refresh(ctx context.Context, old jwtx.Claims, p domain.Principal, extraAMR ...string) (IssuedSession, error) {
	amr := append([]string(nil), old.AMR...)
	for _, m := range extraAMR {
		if !old.HasAMR(m) {
			amr = append(amr, m)
		}
	}

	issued, err := s.Issue(ctx, p, amr)
	if err != nil {
		return IssuedSession{}, err
	}

	if err := s.revoke(ctx, old); err != nil {
		return IssuedSession{}, err
	}
	return issued, nil
}

// Logout writes a best-effort user_logout record, then revokes the session.
// Only the revocation can fail the call.
func (s *SessionService) Logout(ctx context.Context, claims jwtx.Claims) error {
	s.Audit.RecordBestEffort(ctx, nil, AuditEntry{
		Action:       domain.AuditUserLogout,
		ResourceType: domain.ResourceSession,
		ResourceID:   claims.SID,
	})

	if err := s.revoke(ctx, claims); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("session logged out", slog.String("user_id", claims.Subject))
	return nil
}

func (s *SessionService) revoke(ctx context.Context, claims jwtx.Claims) error {
	if claims.SID == "" {
		return nil
	}

	until := s.now().Add(s.TTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}

	if err := s.Revocations.Revoke(ctx, claims.SID, until); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// PrincipalFromClaims rebuilds the session identity from verified claims.
func PrincipalFromClaims(c jwtx.Claims) domain.Principal {
	return domain.Principal{
		ID:          c.Subject,
		Name:        c.Name,
		Role:        domain.Role(c.Role),
		TOTPEnabled: c.TOTPEnabled,
	}
}

// AMRFor lists the factors a successful login verified.
func AMRFor(r LoginResult) []string {
	if r.UsedTOTP {
		return []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA}
	}
	return []string{jwtx.AMRPassword}
}

package http

import (
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
)

func toPrincipal(p domain.Principal) authsdk.Principal {
	return authsdk.Principal{
		ID:          p.ID,
		Name:        p.Name,
		Role:        p.Role.String(),
		TOTPEnabled: p.TOTPEnabled,
	}
}

func toTokenResponse(s service.IssuedSession, now time.Time) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.ExpiresIn(now),
		Principal:   toPrincipal(s.Principal),
	}
}

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:           u.ID,
		NationalCode: u.NationalCode,
		PhoneNumber:  u.PhoneNumber,
		FullName:     u.FullName,
		Role:         u.Role.String(),
		Status:       string(u.Status),
		Gender:       u.Gender,
		BirthDate:    u.BirthDate,
		CreatedBy:    u.CreatedBy,
		TOTPEnabled:  u.TOTPEnabled,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUsers(users []domain.User) authsdk.UsersResponse {
	out := make([]authsdk.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return authsdk.UsersResponse{Users: out}
}

func toAuditLog(r domain.AuditRecord) authsdk.AuditLog {
	log := authsdk.AuditLog{
		ID:           r.ID,
		ActorUserID:  r.ActorUserID,
		Action:       string(r.Action),
		ResourceType: r.ResourceType,
		ResourceID:   r.ResourceID,
		Details:      r.Details,
		IPAddress:    r.IPAddress,
		UserAgent:    r.UserAgent,
		OccurredAt:   r.OccurredAt,
	}
	if r.ActorDetails != nil {
		log.Actor = &authsdk.AuditActor{Name: r.ActorDetails.Name, Role: r.ActorDetails.Role.String()}
	}
	return log
}

func toProfileUpdate(p authsdk.UpdateProfileRequest) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		Gender:      p.Gender,
		BirthDate:   p.BirthDate,
	}
}

func toNewAccount(req authsdk.CreateUserRequest) service.NewAccount {
	return service.NewAccount{
		FullName:     req.FullName,
		NationalCode: req.NationalCode,
		PhoneNumber:  req.PhoneNumber,
		Password:     req.Password,
		Role:         domain.Role(req.Role),
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
	}
}

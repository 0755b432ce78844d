package sqlite

import (
	"context"
	"database/sql"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	row, err := r.q.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByNationalCode(ctx context.Context, nationalCode string) (domain.User, error) {
	row, err := r.q.GetUserByNationalCode(ctx, nationalCode)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	status := u.Status
	if status == "" {
		status = domain.UserStatusActive
	}

	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		NationalCode: u.NationalCode,
		PhoneNumber:  u.PhoneNumber,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(status),
		Gender:       mapStringNull(u.Gender),
		BirthDate:    mapStringNull(u.BirthDate),
		CreatedBy:    mapOptionalString(u.CreatedBy),
		TotpSecret:   mapOptionalString(u.TOTPSecret),
		TotpEnabled:  u.TOTPEnabled,
	})
	return mapUniqueViolation(err)
}

func (r *usersRepo) UpdateUserProfile(ctx context.Context, id string, p domain.ProfileUpdate) error {
	return r.q.UpdateUserProfile(ctx, gen.UpdateUserProfileParams{
		FullName:    mapOptionalString(p.FullName),
		PhoneNumber: mapOptionalString(p.PhoneNumber),
		Gender:      mapOptionalString(p.Gender),
		BirthDate:   mapOptionalString(p.BirthDate),
		ID:          id,
	})
}

func (r *usersRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.q.UpdateUserRole(ctx, gen.UpdateUserRoleParams{
		Role: string(role),
		ID:   id,
	})
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	return r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash: hash,
		ID:           id,
	})
}

func (r *usersRepo) UpdateTOTP(ctx context.Context, id string, secret *string, enabled bool) error {
	return r.q.UpdateUserTOTP(ctx, gen.UpdateUserTOTPParams{
		TotpSecret:  mapOptionalString(secret),
		TotpEnabled: enabled,
		ID:          id,
	})
}

func (r *usersRepo) SetUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return r.q.UpdateUserStatus(ctx, gen.UpdateUserStatusParams{
		Status: string(status),
		ID:     id,
	})
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return mapUsers(rows), nil
}

func (r *usersRepo) ListUsersByCreator(ctx context.Context, creatorID string) ([]domain.User, error) {
	rows, err := r.q.ListUsersByCreator(ctx, sql.NullString{String: creatorID, Valid: true})
	if err != nil {
		return nil, err
	}
	return mapUsers(rows), nil
}

func (r *usersRepo) ListUsersWithTOTPSecret(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.ListUsersWithTOTPSecret(ctx)
	if err != nil {
		return nil, err
	}
	return mapUsers(rows), nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.q.CountUsers(ctx)
}

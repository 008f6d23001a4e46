package database

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kipawa/jaribio/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var rows []userRow
	q := repo.db.WithContext(ctx).Where("username = ? OR email = ?", username, email)
	if len(exclIDs) > 0 {
		q = q.Where("id NOT IN ?", exclIDs)
	}
	if err := q.Find(&rows).Error; err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}

	for _, row := range rows {
		if username != "" && row.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	row, err := rowFromUser(usr)
	if err != nil {
		return user.User{}, err
	}
	if err = repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := repo.db.WithContext(ctx)
	switch {
	case filter.ID != "":
		q = q.Where("id = ?", filter.ID)
	case filter.Username != "":
		q = q.Where("username = ?", filter.Username)
	case filter.Email != "":
		q = q.Where("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		q = q.Where("username = ? OR email = ?", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toCore()
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	q := repo.db.WithContext(ctx).Order("created_at")
	if filter != nil {
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
		}
		if filter.ClassID != "" {
			q = q.Where("class_id = ?", filter.ClassID)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where("created_at >= ?", filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where("created_at <= ?", filter.CreatedTo)
		}
	}

	var rows []userRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr, err := row.toCore()
		if err != nil {
			return nil, err
		}
		// role membership lives in a JSON column; filter in memory
		if filter != nil && len(filter.Roles) > 0 && !hasAnyRole(usr, filter.Roles) {
			continue
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	updates := make(map[string]interface{})
	if usr.Name != "" {
		updates["name"] = usr.Name
	}
	if usr.Username != "" {
		updates["username"] = usr.Username
	}
	if usr.Email != "" {
		updates["email"] = usr.Email
	}
	if usr.Mobile != "" {
		updates["mobile"] = usr.Mobile
	}
	if usr.ClassID != "" {
		updates["class_id"] = usr.ClassID
	}
	if usr.IsActive != nil {
		updates["is_active"] = *usr.IsActive
	}
	if usr.Roles != nil {
		roles, err := json.Marshal(usr.Roles)
		if err != nil {
			return user.User{}, errors.Wrap(err, "marshaling roles")
		}
		updates["roles"] = roles
	}
	if usr.PasswordHash != nil {
		updates["password_hash"] = usr.PasswordHash
	}
	if !usr.UpdatedAt.IsZero() {
		updates["updated_at"] = usr.UpdatedAt
	}
	if !usr.LastLogin.IsZero() {
		updates["last_login"] = usr.LastLogin
	}

	res := repo.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", usr.ID).Updates(updates)
	if res.Error != nil {
		return user.User{}, errors.Wrap(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	res := repo.db.WithContext(ctx).Where("id IN ?", ids).Delete(&userRow{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "deleting users")
	}
	return int(res.RowsAffected), nil
}

func (repo *userRepository) CountUsers(ctx context.Context, rolePrefix string) (int, error) {
	if rolePrefix == "" {
		var count int64
		if err := repo.db.WithContext(ctx).Model(&userRow{}).Count(&count).Error; err != nil {
			return 0, errors.Wrap(err, "counting users")
		}
		return int(count), nil
	}

	users, err := repo.QueryUsers(ctx, nil)
	if err != nil {
		return 0, err
	}
	var count int
	for _, usr := range users {
		if usr.RoleStartsWith(rolePrefix) {
			count++
		}
	}
	return count, nil
}

func rowFromUser(usr user.User) (userRow, error) {
	roles, err := json.Marshal(usr.Roles)
	if err != nil {
		return userRow{}, errors.Wrap(err, "marshaling roles")
	}
	var isActive bool
	if usr.IsActive != nil {
		isActive = *usr.IsActive
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		Mobile:       usr.Mobile,
		ClassID:      usr.ClassID,
		IsActive:     isActive,
		Roles:        roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    usr.LastLogin,
	}, nil
}

func hasAnyRole(usr user.User, roles []string) bool {
	sort.Strings(roles)
	for _, role := range usr.Roles {
		if idx := sort.SearchStrings(roles, role); idx < len(roles) && roles[idx] == role {
			return true
		}
	}
	return false
}

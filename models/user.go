package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ysrn87/pos_backend/config"
	"github.com/ysrn87/pos_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"type:enum('PRIVILEGE','ADMIN','SALES','WAREHOUSE');default:SALES" json:"role"`
	Status    string    `gorm:"type:enum('ACTIVE','INACTIVE');default:ACTIVE" json:"status"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {

	db := config.GetDB()

	user := User{}
	err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	// check login credentials; any compare failure (mismatch or a hash the
	// library cannot read) rejects the login
	err = utils.ComparePassword(user.Password, password)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if user.Status != UserStatusActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func GetMe(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, errors.New("user id is required")
	}
	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

// canManageRole enforces who may create or modify users of a given role.
// PRIVILEGE manages everyone; ADMIN manages SALES and WAREHOUSE only.
func canManageRole(actorRole string, targetRole string) bool {
	switch actorRole {
	case RolePrivilege:
		return true
	case RoleAdmin:
		return targetRole == RoleSales || targetRole == RoleWarehouse
	}
	return false
}

func (input *NewUser) validate(ctx context.Context, id int) error {
	if !IsValidRole(input.Role) {
		return errors.New("invalid role")
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
		return err
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	actorRole, _ := utils.GetUserRoleFromContext(ctx)
	if !canManageRole(actorRole, input.Role) {
		return nil, ErrForbidden
	}

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	actorId, _ := utils.GetUserIdFromContext(ctx)
	user := User{
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Name:      input.Name,
		Phone:     input.Phone,
		Password:  hashed,
		Role:      input.Role,
		Status:    UserStatusActive,
		CreatedBy: actorId,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionCreateUser, "User", user.ID, map[string]interface{}{"email": user.Email, "role": user.Role}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	user.PrepareGive()
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *UpdateUserInput) (*User, error) {

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	actorRole, _ := utils.GetUserRoleFromContext(ctx)
	// the actor must be allowed to manage both the current and the new role
	if !canManageRole(actorRole, user.Role) || !canManageRole(actorRole, input.Role) {
		return nil, ErrForbidden
	}

	newUser := NewUser{Email: input.Email, Name: input.Name, Phone: input.Phone, Password: "x", Role: input.Role}
	if err := newUser.validate(ctx, id); err != nil {
		return nil, err
	}

	user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	user.Name = input.Name
	user.Phone = input.Phone
	user.Role = input.Role
	if input.Password != "" {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionUpdateUser, "User", user.ID, map[string]interface{}{"email": user.Email, "role": user.Role}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	user.PrepareGive()
	return user, nil
}

func ToggleUserStatus(ctx context.Context, id int) (*User, error) {

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	actorRole, _ := utils.GetUserRoleFromContext(ctx)
	if !canManageRole(actorRole, user.Role) {
		return nil, ErrForbidden
	}
	actorId, _ := utils.GetUserIdFromContext(ctx)
	if actorId == user.ID {
		return nil, errors.New("cannot change own status")
	}

	if user.Status == UserStatusActive {
		user.Status = UserStatusInactive
	} else {
		user.Status = UserStatusActive
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Save(user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := logActivity(tx, ActionToggleUserStatus, "User", user.ID, map[string]interface{}{"status": user.Status}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	user.PrepareGive()
	return user, nil
}

type UserFilter struct {
	PaginationInput
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
}

func GetUsers(ctx context.Context, filter *UserFilter) (*PageResult[User], error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	result, err := Paginate[User](query, filter.PaginationInput, "id DESC")
	if err != nil {
		return nil, err
	}
	for _, u := range result.Records {
		u.PrepareGive()
	}
	return result, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

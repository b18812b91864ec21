package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/consolidation_backend/config"
	"github.com/mmdatafocus/consolidation_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID             int        `gorm:"primary_key" json:"id"`
	OrganizationId string     `gorm:"index" json:"organization_id"`
	Email          string     `gorm:"size:255;not null;unique" json:"email" binding:"required"`
	Name           string     `gorm:"size:100;not null" json:"name" binding:"required"`
	Password       string     `gorm:"size:255;not null" json:"password"`
	Role           UserRole   `gorm:"type:enum('Admin','Owner','Member');default:Member" json:"role"`
	IsActive       *bool      `gorm:"not null" json:"is_active"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginInfo struct {
	Token              string `json:"token"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	OrganizationId     string `json:"organization_id"`
	OrganizationName   string `json:"organization_name"`
	DefaultCurrency    string `json:"default_currency"`
	FiscalYearEndMonth int    `json:"fiscal_year_end_month"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func Register(ctx context.Context, input *NewUser) (*User, error) {

	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).
		Where("email = ?", strings.ToLower(input.Email)).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Name:     html.EscapeString(strings.TrimSpace(input.Name)),
		Password: string(hashedPassword),
		Role:     UserRoleOwner,
		IsActive: utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var result LoginInfo

	user := User{}
	err := db.WithContext(ctx).Model(&User{}).
		Where("email = ?", strings.ToLower(email)).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid email or password")
	}

	isActive := *user.IsActive
	if !isActive {
		return nil, errors.New("user is disabled")
	}

	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&user).UpdateColumn("last_login", &now).Error; err != nil {
		return nil, err
	}

	// generate token & response
	token, err := utils.JwtGenerate(user.ID, user.OrganizationId, string(user.Role))
	if err != nil {
		return nil, err
	}
	result.Token = token
	result.Name = user.Name
	result.Role = string(user.Role)
	result.OrganizationId = user.OrganizationId

	if user.OrganizationId != "" {
		organization, err := GetOrganizationById(ctx, user.OrganizationId)
		if err != nil {
			return nil, err
		}
		result.OrganizationName = organization.Name
		result.DefaultCurrency = organization.DefaultCurrency
		result.FiscalYearEndMonth = organization.FiscalYearEndMonth
	}

	// the session entry is what logout deletes to revoke the token before
	// its JWT expiry
	if err := config.SetRedisValue("Token:"+token, user.Email, tokenLifespan()); err != nil {
		return nil, err
	}

	return &result, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, nil
	}
	return true, nil
}

func GetMe(ctx context.Context) (*User, error) {

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user not found")
	}

	db := config.GetDB()
	var result User
	if err := db.WithContext(ctx).First(&result, userId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	result.PrepareGive()
	return &result, nil
}

// AttachUserToOrganization links a freshly created organization to its
// owner so later logins carry the organization claim.
func AttachUserToOrganization(ctx context.Context, userId int, organizationId string) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userId).
		UpdateColumn("organization_id", organizationId).Error
}

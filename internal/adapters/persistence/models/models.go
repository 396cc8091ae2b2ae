package models

import (
	"encoding/json"
	"time"

	"buildease/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Session Tables
// ============================================================

// User represents users table. The primary key is the caller-chosen,
// case-sensitive login id.
type User struct {
	ID             string    `gorm:"primaryKey;size:50" json:"id"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Role           string    `gorm:"size:20;not null;index" json:"role"`
	CompanyCode    string    `gorm:"size:20;index" json:"company_code"`
	Status         string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Phone          string    `gorm:"size:30" json:"phone"`
	CompanyName    string    `gorm:"size:100" json:"company_name"`
	BusinessNumber string    `gorm:"size:20" json:"business_number"`
	BusinessInfo   string    `gorm:"type:text" json:"-"`
	Address        string    `gorm:"size:255" json:"address"`
	Department     string    `gorm:"size:50" json:"department"`
	Position       string    `gorm:"size:50" json:"position"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SetBusinessInfo serializes the structured registry fields into the row
func (u *User) SetBusinessInfo(info *domain.BusinessInfo) error {
	if info == nil {
		u.BusinessInfo = ""
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	u.BusinessInfo = string(raw)
	return nil
}

// GetBusinessInfo deserializes the structured registry fields, nil if unset
func (u *User) GetBusinessInfo() *domain.BusinessInfo {
	if u.BusinessInfo == "" {
		return nil
	}
	var info domain.BusinessInfo
	if err := json.Unmarshal([]byte(u.BusinessInfo), &info); err != nil {
		return nil
	}
	return &info
}

// UserResponse is the sanitized identity DTO, password hash stripped
type UserResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Role         string               `json:"role"`
	CompanyCode  string               `json:"company_code,omitempty"`
	Status       string               `json:"status"`
	Phone        string               `json:"phone,omitempty"`
	CompanyName  string               `json:"company_name,omitempty"`
	BusinessInfo *domain.BusinessInfo `json:"business_info,omitempty"`
	Address      string               `json:"address,omitempty"`
	Department   string               `json:"department,omitempty"`
	Position     string               `json:"position,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Role:         u.Role,
		CompanyCode:  u.CompanyCode,
		Status:       u.Status,
		Phone:        u.Phone,
		CompanyName:  u.CompanyName,
		BusinessInfo: u.GetBusinessInfo(),
		Address:      u.Address,
		Department:   u.Department,
		Position:     u.Position,
		CreatedAt:    u.CreatedAt,
	}
}

// Session represents sessions table. Rows are owned exclusively by the
// session store; no other component touches this table.
type Session struct {
	SID       string    `gorm:"primaryKey;size:64;column:sid" json:"sid"`
	Payload   string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session TTL has elapsed
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ============================================================
// Estimate Tables
// ============================================================

// Estimate represents estimates table (the central project record)
type Estimate struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OwnerID         string     `gorm:"size:50;not null;index" json:"owner_id"`
	ClientName      string     `gorm:"size:100" json:"client_name"`
	ClientPhone     string     `gorm:"size:30" json:"client_phone"`
	SiteAddress     string     `gorm:"size:255" json:"site_address"`
	StartDate       *time.Time `gorm:"type:date" json:"start_date"`
	EndDate         *time.Time `gorm:"type:date" json:"end_date"`
	TotalAmount     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	VATIncluded     bool       `gorm:"default:false" json:"vat_included"`
	Status          string     `gorm:"size:30;not null;index" json:"status"`
	Memo            string     `gorm:"type:text" json:"memo"`
	ImageURL        string     `gorm:"size:500" json:"image_url"`
	Style           string     `gorm:"size:100" json:"style"`
	DownPayment     float64    `gorm:"type:decimal(15,2);default:0" json:"down_payment"`
	ProgressPayment float64    `gorm:"type:decimal(15,2);default:0" json:"progress_payment"`
	BalancePayment  float64    `gorm:"type:decimal(15,2);default:0" json:"balance_payment"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Items  []EstimateItem      `gorm:"foreignKey:EstimateID" json:"items,omitempty"`
	Stages []ConstructionStage `gorm:"foreignKey:ProjectID" json:"stages,omitempty"`
}

func (Estimate) TableName() string {
	return "estimates"
}

// EstimateItem represents estimate_items table. Amount is always recomputed
// server-side as quantity * unit_price.
type EstimateItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EstimateID  uint      `gorm:"not null;index" json:"estimate_id"`
	Category    string    `gorm:"size:50" json:"category"`
	Description string    `gorm:"size:255" json:"description"`
	Spec        string    `gorm:"size:100" json:"spec"`
	Quantity    float64   `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EstimateItem) TableName() string {
	return "estimate_items"
}

// ConstructionStage represents construction_stages table
type ConstructionStage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Manager     string    `gorm:"size:100" json:"manager"`
	Duration    string    `gorm:"size:50" json:"duration"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ConstructionStage) TableName() string {
	return "construction_stages"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates all tables if they do not exist
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Session{},
		&Estimate{},
		&EstimateItem{},
		&ConstructionStage{},
	); err != nil {
		return err
	}

	// MySQL's default utf8mb4 collation compares case-insensitively; the
	// login id must stay case-sensitive. SQLite compares bytes already.
	if db.Dialector.Name() == "mysql" {
		return db.Exec(
			"ALTER TABLE users MODIFY id VARCHAR(50) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		).Error
	}

	return nil
}

package model

import "time"

// User represents an account that can log in.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email          string     `json:"email" gorm:"size:100;uniqueIndex;not null"`
	FullName       *string    `json:"full_name" gorm:"size:100"`
	HashedPassword string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsActive       bool       `json:"is_active" gorm:"not null"`
	IsSuperuser    bool       `json:"is_superuser" gorm:"not null"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt      *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username    string  `json:"username" validate:"required,max=50"`
	Email       string  `json:"email" validate:"required,email,max=100"`
	FullName    *string `json:"full_name" validate:"omitempty,max=100"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// Privileged reports whether the payload asks for fields only a superuser may set.
func (in UserCreate) Privileged() bool {
	return (in.IsSuperuser != nil && *in.IsSuperuser) || (in.IsActive != nil && !*in.IsActive)
}

// NewUser builds the record for a create request around an already hashed password.
func (in UserCreate) NewUser(hashed string) *User {
	u := &User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	return u
}

// UserUpdate is a partial update received over HTTP. Absent fields are left
// untouched; an explicit null clears full_name.
type UserUpdate struct {
	Username    *string          `json:"username" validate:"omitempty,min=1,max=50"`
	Email       *string          `json:"email" validate:"omitempty,email,max=100"`
	FullName    Nullable[string] `json:"full_name" validate:"omitempty,max=100" swaggertype:"string"`
	Password    *string          `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive    *bool            `json:"is_active"`
	IsSuperuser *bool            `json:"is_superuser"`
}

// Privileged reports whether the update touches superuser-only fields.
func (u UserUpdate) Privileged() bool {
	return u.IsActive != nil || u.IsSuperuser != nil
}

// UserPatch is the store-level form of UserUpdate: the password has already
// been replaced by its hash.
type UserPatch struct {
	Username       *string
	Email          *string
	FullName       Nullable[string]
	HashedPassword *string
	IsActive       *bool
	IsSuperuser    *bool
}

// Apply copies the present fields onto user.
func (p UserPatch) Apply(user *User) {
	if p.Username != nil {
		user.Username = *p.Username
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	p.FullName.ApplyTo(&user.FullName)
	if p.HashedPassword != nil {
		user.HashedPassword = *p.HashedPassword
	}
	if p.IsActive != nil {
		user.IsActive = *p.IsActive
	}
	if p.IsSuperuser != nil {
		user.IsSuperuser = *p.IsSuperuser
	}
}

// LoginRequest carries the login form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Token is returned by a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

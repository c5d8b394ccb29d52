package handlers

import (
	"time"

	"github.com/oksasatya/flyobo-travel-api/internal/domain/entity"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,personname"`
	Email    string `json:"email" binding:"required,mailaddr"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyEmailRequest struct {
	OTP string `json:"otp"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newpassword" binding:"required,pwd"`
	OTP         string `json:"otp" binding:"required"`
}

type googleRequest struct {
	Email          string `json:"email" binding:"required"`
	Name           string `json:"name" binding:"required"`
	GooglePhotoURL string `json:"googlePhotoUrl"`
}

type updateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,personname"`
	Phone  *string `json:"phone" binding:"omitempty,phone"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

type registeredUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

type loggedInUser struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   entity.Role `json:"role"`
	Phone  string      `json:"phone,omitempty"`
	Avatar string      `json:"avatar"`
}

// publicUser is the stored user minus the password hash and OTP fields.
type publicUser struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              entity.Role `json:"role"`
	Avatar            string      `json:"avatar"`
	Phone             string      `json:"phone,omitempty"`
	IsAccountVerified bool        `json:"isAccountVerified"`
	SavedItems        []string    `json:"savedItems"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

func toRegistered(u *entity.User) registeredUser {
	return registeredUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toLoggedIn(u *entity.User) loggedInUser {
	return loggedInUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Phone: u.Phone, Avatar: u.Avatar}
}

func toPublic(u *entity.User) publicUser {
	saved := u.SavedItems
	if saved == nil {
		saved = []string{}
	}
	return publicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		Avatar:            u.Avatar,
		Phone:             u.Phone,
		IsAccountVerified: u.IsAccountVerified,
		SavedItems:        saved,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

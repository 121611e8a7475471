package user

import "time"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const GuestUsername = "guest_student"

type User struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"index" json:"email,omitempty"`
	HashedPassword string    `json:"-"`
	Role           string    `gorm:"default:student" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

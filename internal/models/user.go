package models

import (
	"time"
)

// Role gates which surface a user sees after login
type Role string

const (
	RolAdmin   Role = "admin"
	RolDocente Role = "docente"
)

// User is the stored account document. PasswordHash is bcrypt and never
// serialized.
type User struct {
	ID           string    `bson:"_id" json:"usuario_id"`
	Nombre       string    `bson:"nombre" json:"nombre"`
	Apellido     string    `bson:"apellido" json:"apellido"`
	Rol          Role      `bson:"rol" json:"rol"`
	Email        string    `bson:"email" json:"email"`
	Institucion  string    `bson:"institucion,omitempty" json:"institucion,omitempty"`
	FacultadArea string    `bson:"facultad_area,omitempty" json:"facultad_area,omitempty"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"-"`
}

// Profile is the authenticated profile payload served to clients
func (u *User) Profile() UserProfile {
	return UserProfile{
		UsuarioID:    u.ID,
		Nombre:       u.Nombre,
		Apellido:     u.Apellido,
		Rol:          u.Rol,
		Email:        u.Email,
		Institucion:  u.Institucion,
		FacultadArea: u.FacultadArea,
	}
}

type UserProfile struct {
	UsuarioID    string `json:"usuario_id"`
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	Rol          Role   `json:"rol"`
	Email        string `json:"email"`
	Institucion  string `json:"institucion,omitempty"`
	FacultadArea string `json:"facultad_area,omitempty"`
}

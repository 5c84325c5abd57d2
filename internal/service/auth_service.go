package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrCredenciales = errors.New("usuario o contraseña incorrectos")

// AuthService validates the single operator credential. The user and bcrypt
// hash come from configuration; there is no user table.
type AuthService interface {
	Validar(usuario, password string) error
}

type authService struct {
	adminUser    string
	passwordHash string
}

func NewAuthService(adminUser, passwordHash string) AuthService {
	return &authService{adminUser: adminUser, passwordHash: passwordHash}
}

func (s *authService) Validar(usuario, password string) error {
	if usuario != s.adminUser {
		// Burn a comparison anyway so both failure paths take similar time.
		_ = bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
		return ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return ErrCredenciales
	}
	return nil
}

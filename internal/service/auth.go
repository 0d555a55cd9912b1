package service

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/skobelevs/gochat/internal/domain"
	"github.com/skobelevs/gochat/internal/errors"
	"github.com/skobelevs/gochat/internal/logger"
)

type AuthService interface {
	Signup(email domain.Email, password string) (domain.UserId, error)
	Login(email domain.Email, password string) (string, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	User(email domain.Email) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, jwt Jwt) AuthService {
	return &Auth{storage, jwt}
}

func (a *Auth) Signup(email domain.Email, password string) (domain.UserId, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return 0, err
	}

	return a.storage.SaveUser(domain.User{Email: email, PassHash: string(passHash)})
}

func (a *Auth) Login(email domain.Email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := a.storage.User(email)
	if err != nil {
		if errors.IsNotFound(err) {
			// Same answer as a wrong password, no user enumeration.
			return "", &errors.ErrorWithStatusCode{Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", &errors.ErrorWithStatusCode{Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	}

	return a.jwt.NewToken(user)
}

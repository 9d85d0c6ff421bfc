package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "motorent/internal/config"
	"motorent/internal/domain"
	"motorent/internal/domain/models"
	"motorent/internal/repositories"
	"motorent/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("メールアドレスまたはパスワードが正しくありません")
	ErrInvalidToken       = errors.New("invalid token")
)

const userStatusActive = "active"

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	VendorID int64  `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the acting identity.
func (c Claims) Actor() domain.Actor {
	return domain.Actor{UserID: domain.ID(c.UserID), Role: c.Role, VendorID: domain.ID(c.VendorID)}
}

type AuthService struct {
	DB        *sql.DB
	Driver    string
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

func NewAuthService(conn *sql.DB, env intconfig.Env) AuthService {
	return AuthService{DB: conn, Driver: env.DBDriver, Secret: []byte(env.JWTSecret), TTL: env.JWTTTL}
}

func (s AuthService) users() repositories.UserRepository {
	return repositories.NewUserRepository(s.DB, s.Driver)
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

// Login checks the password and returns a signed token with the user.
func (s AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", models.User{}, ErrInvalidCredentials
	}

	user, err := s.users().GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, domain.InternalError{Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}
	if user.Status != "" && user.Status != userStatusActive {
		return "", models.User{}, domain.ForbiddenError{Msg: "このアカウントは利用停止中です"}
	}

	token, err := s.Issue(user)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", user.ID, user.Role))
	return token, user, nil
}

// Issue signs an HS256 token for user.
func (s AuthService) Issue(user models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Role:     strings.ToLower(user.Role),
		VendorID: user.VendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s AuthService) ParseToken(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 || claims.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Me reloads the signed-in user so a suspended account is noticed before the token expires.
func (s AuthService) Me(ctx context.Context, actor domain.Actor) (models.User, error) {
	if actor.UserID <= 0 {
		return models.User{}, domain.ForbiddenError{Msg: "login required"}
	}
	user, err := s.users().GetByID(ctx, int64(actor.UserID))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, err
		}
		return models.User{}, domain.InternalError{Err: err}
	}
	if user.Status != "" && user.Status != userStatusActive {
		return models.User{}, domain.ForbiddenError{Msg: "このアカウントは利用停止中です"}
	}
	return user, nil
}

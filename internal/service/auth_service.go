package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// HashPassword 口令哈希：只依赖口令本身（与账号/邮箱无关）
func HashPassword(password string) []byte {
	h := sha256.Sum256([]byte(password))
	return h[:]
}

// authClaims JWT payload：sub=user_id + 自定义 role
type authClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService 后台登录与 token 校验
type AuthService struct {
	users   repository.AuthRepository
	signKey []byte
	ttl     time.Duration
}

// NewAuthService 创建鉴权服务
func NewAuthService(users repository.AuthRepository, signKey []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, signKey: signKey, ttl: ttl}
}

// Login 校验账号口令，签发 HS256 token
func (s *AuthService) Login(ctx context.Context, account, password string) (string, *domain.AdminUser, error) {
	u, err := s.users.GetUserByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", nil, domain.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	hash := HashPassword(password)
	if subtle.ConstantTimeCompare(hash, u.PasswordHash) != 1 {
		return "", nil, domain.ErrUnauthorized
	}

	now := time.Now()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: u.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// VerifyToken 校验 bearer token，返回操作者上下文
func (s *AuthService) VerifyToken(token string) (domain.Actor, error) {
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Actor{}, domain.ErrUnauthorized
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return domain.Actor{}, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return domain.Actor{UserID: claims.Subject, Role: claims.Role}, nil
}

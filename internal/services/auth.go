package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/ctxutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, string, error)
	Login(ctx context.Context, in LoginInput) (*types.User, string, error)
	// Logout clears the caller's chat history. Tokens are stateless and
	// simply expire.
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	chatRepo     repos.ChatMessageRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          Clock
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	chatRepo repos.ChatMessageRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		chatRepo:     chatRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          systemClock,
	}
}

var errInvalidCredentials = apierr.Newf(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, "", invalidRequest(err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	var created *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := as.userRepo.EmailExists(ctx, tx, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Newf(http.StatusConflict, "email_taken", "an account with this email already exists")
		}
		u, err := as.userRepo.Create(ctx, tx, &types.User{Email: in.Email, Password: string(hashed), Name: in.Name})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.Newf(http.StatusConflict, "email_taken", "an account with this email already exists")
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	tok, err := as.generateAccessToken(created)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	as.log.Info("User registered", "user_id", created.ID)
	return created, tok, nil
}

func (as *authService) Login(ctx context.Context, in LoginInput) (*types.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, "", invalidRequest(err)
	}
	u, err := as.userRepo.GetByEmail(ctx, nil, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("load user by email: %w", err)
	}
	if u == nil {
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, "", errInvalidCredentials
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}
	return u, tok, nil
}

func (as *authService) Logout(ctx context.Context) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	n, err := as.chatRepo.DeleteByUser(ctx, nil, userID)
	if err != nil {
		as.log.Warn("Failed to clear chat history", "user_id", userID, "error", err)
		return fmt.Errorf("clear chat history: %w", err)
	}
	as.log.Debug("Chat history cleared", "user_id", userID, "messages", n)
	return nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, errUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, errUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid user id in token: %w", err))
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

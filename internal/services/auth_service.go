package services

import (
	"context"
	"errors"
	"time"

	"equiptrack/internal/apperrors"
	"equiptrack/internal/config"
	"equiptrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any authentication failure. It is
// deliberately not specific about which part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the account persistence the auth service needs.
type UserStore interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
}

type AuthService struct {
	store         UserStore
	mailer        Mailer
	secret        []byte
	adminUserID   string
	adminPassword string
	log           *zap.Logger
}

type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(store UserStore, mailer Mailer, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		store:         store,
		mailer:        mailer,
		secret:        []byte(cfg.JWTSecret),
		adminUserID:   cfg.AdminUserID,
		adminPassword: cfg.AdminPassword,
		log:           log,
	}
}

// Register creates a new user account and kicks off the welcome email in
// the background. A mail failure never fails or delays registration.
func (as *AuthService) Register(req models.UserRegister) (*models.UserResponse, string, error) {
	if err := checkStruct(req); err != nil {
		return nil, "", err
	}

	if _, err := as.store.FindByEmail(req.Email); err == nil {
		return nil, "", &apperrors.ConflictError{Message: "user already exists with this email"}
	} else if !apperrors.IsNotFound(err) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Company:      req.Company,
		Role:         "user",
	}

	if err := as.store.Create(&user); err != nil {
		return nil, "", err
	}

	// Send welcome email asynchronously (best effort)
	go func(email, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := as.mailer.SendWelcome(ctx, email, name); err != nil {
			as.log.Warn("failed to send welcome email", zap.String("email", email), zap.Error(err))
		}
	}(user.Email, user.Name)

	token, err := as.generateJWT(&user)
	if err != nil {
		return nil, "", err
	}

	return user.ToResponse(), token, nil
}

// Login authenticates a user and returns a JWT token
func (as *AuthService) Login(req models.UserLogin) (string, *models.UserResponse, error) {
	if err := checkStruct(req); err != nil {
		return "", nil, err
	}

	user, err := as.store.FindByEmail(req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := as.generateJWT(user)
	if err != nil {
		return "", nil, err
	}

	return token, user.ToResponse(), nil
}

// AdminLogin authenticates against the configured administrative
// credentials and issues a token carrying the admin role.
func (as *AuthService) AdminLogin(req models.AdminLogin) (string, error) {
	if err := checkStruct(req); err != nil {
		return "", err
	}

	if as.adminPassword == "" {
		return "", errors.New("admin access is not configured")
	}
	if req.UserID != as.adminUserID || req.Password != as.adminPassword {
		return "", ErrInvalidCredentials
	}

	claims := JWTClaims{
		UserID: as.adminUserID,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.secret)
}

// GetUserByID retrieves a user by id
func (as *AuthService) GetUserByID(userID string) (*models.UserResponse, error) {
	user, err := as.store.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// generateJWT creates a JWT token for the user
func (as *AuthService) generateJWT(user *models.User) (string, error) {
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 24 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.secret)
}

// ValidateToken validates a JWT token and returns its claims
func (as *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return as.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

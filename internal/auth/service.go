package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"course-management-server/internal/models"
	"course-management-server/internal/token"
)

var (
	// ErrDuplicateEmail is returned when registering an email that already
	// has an account. Register stays distinguishable from login on purpose:
	// merging it would break the duplicate-email contract of registration.
	ErrDuplicateEmail = errors.New("user with this email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// that login never leaks which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrRoleNotFound is returned when an explicit role id does not resolve.
	ErrRoleNotFound = errors.New("role not found")
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
	Address     string
	RoleID      *int64
}

// Result is the contract shape shared by register, login and refresh.
type Result struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

// Service composes the credential store, token signer and refresh token
// ledger into the register/login/refresh/logout flows.
type Service struct {
	DB     *gorm.DB
	Signer *token.Signer
	Ledger *token.Ledger
}

// NewService creates an auth Service.
func NewService(db *gorm.DB, signer *token.Signer, ledger *token.Ledger) *Service {
	return &Service{DB: db, Signer: signer, Ledger: ledger}
}

// Register creates a new user account and issues its first token pair.
func (s *Service) Register(in RegisterInput) (*Result, error) {
	var existing models.User
	err := s.DB.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	role := models.DefaultRole
	if in.RoleID != nil {
		role, err = models.RoleFromID(*in.RoleID)
		if err != nil {
			return nil, ErrRoleNotFound
		}
	}

	user := models.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Role:        role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.issueTokens(&user)
}

// Login verifies credentials and issues a fresh token pair, revoking any
// refresh token from a previous login.
func (s *Service) Login(email, password string) (*Result, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(&user)
}

// Refresh mints a new access token for the owner of a valid refresh token.
// The refresh token string itself is reused unchanged; there is no rotation
// on plain refresh.
func (s *Service) Refresh(refreshTokenString string) (*Result, error) {
	refreshToken, err := s.Ledger.FindByToken(refreshTokenString)
	if err != nil {
		return nil, err
	}

	// Revocation is reported before expiry so that a revoked-and-expired
	// token surfaces as revoked.
	if refreshToken.IsRevoked {
		return nil, token.ErrTokenRevoked
	}

	if err := s.Ledger.VerifyNotExpired(refreshToken); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", refreshToken.UserID).Error; err != nil {
		return nil, fmt.Errorf("loading token owner: %w", err)
	}

	accessToken, err := s.Signer.Sign(&user)
	if err != nil {
		return nil, err
	}

	return &Result{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	}, nil
}

// Logout revokes the given refresh token.
func (s *Service) Logout(refreshTokenString string) error {
	return s.Ledger.Revoke(refreshTokenString)
}

// issueTokens is the shared issuance step of register and login: the ledger
// revokes the previous active refresh token and creates the next one in a
// single transaction, then a new access token is signed.
func (s *Service) issueTokens(user *models.User) (*Result, error) {
	refreshToken, err := s.Ledger.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	accessToken, err := s.Signer.Sign(user)
	if err != nil {
		return nil, err
	}

	return &Result{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	}, nil
}

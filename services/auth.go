package services

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/utils"
)

const (
	msgBadCredentials   = "Incorrect username or password"
	msgCouldNotValidate = "Could not validate credentials"
)

// IDTokenValidator checks a Google ID token for the given audience.
type IDTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type AuthService struct {
	db             *gorm.DB
	tokens         *utils.TokenIssuer
	googleClientID string
	validateGoogle IDTokenValidator
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenIssuer, googleClientID string) *AuthService {
	return &AuthService{
		db:             db,
		tokens:         tokens,
		googleClientID: googleClientID,
		validateGoogle: idtoken.Validate,
	}
}

type RegisterInput struct {
	Username string
	Email    *string
	FullName *string
	Password string
	Disabled bool
	// Provider defaults to models.ProviderPassword.
	Provider string
}

// Register stores a new user. The username is the immutable identifier.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, NewInvalidError("username/password required")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errors.WrapIf(err, "failed to hash password")
	}

	provider := in.Provider
	if provider == "" {
		provider = models.ProviderPassword
	}
	user := models.User{
		Username:       username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hash,
		Disabled:       in.Disabled,
		Provider:       provider,
	}
	// Check inside the tx; the primary key still rejects a concurrent insert.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return NewConflictError("Username already taken")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, NewConflictError("Username already taken")
		}
		if _, ok := AsServiceError(err); ok {
			return nil, err
		}
		return nil, errors.WrapIf(err, "failed to create user")
	}

	log.WithField("username", username).Info("user registered")
	return &user, nil
}

// Verify reports whether the password matches the stored hash. Unknown users
// and wrong passwords both yield false.
func (s *AuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (s *AuthService) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.BurnPasswordCheck(password)
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIf(err, "failed to load user")
	}
	if !utils.CheckPassword(user.HashedPassword, password) {
		return nil, nil
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if user == nil || user.Disabled {
		return "", NewUnauthorizedError(msgBadCredentials)
	}
	return s.issue(user.Username)
}

func (s *AuthService) issue(subject string) (string, error) {
	token, err := s.tokens.Issue(subject)
	if err != nil {
		return "", errors.WrapIf(err, "failed to sign token")
	}
	return token, nil
}

// CurrentUser resolves a bearer token to an enabled user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, NewUnauthorizedError(msgCouldNotValidate)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewUnauthorizedError(msgCouldNotValidate)
		}
		return nil, errors.WrapIf(err, "failed to load user")
	}
	if user.Disabled {
		return nil, NewInactiveError("Inactive user")
	}
	return &user, nil
}

func (s *AuthService) GoogleEnabled() bool {
	return s.googleClientID != ""
}

// GoogleLogin verifies a Google ID token and issues a bearer token for the
// user named by its verified email, creating that user on first sign-in.
func (s *AuthService) GoogleLogin(ctx context.Context, rawToken string) (string, error) {
	if !s.GoogleEnabled() {
		return "", NewNotFoundError("Google login is not enabled")
	}
	if strings.TrimSpace(rawToken) == "" {
		return "", NewInvalidError("id_token required")
	}

	// Verify the ID token against our client id
	payload, err := s.validateGoogle(ctx, rawToken, s.googleClientID)
	if err != nil {
		log.WithError(err).Debug("google id token rejected")
		return "", NewUnauthorizedError(msgCouldNotValidate)
	}
	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return "", NewUnauthorizedError(msgCouldNotValidate)
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		// First sign-in creates the account.
		user, err = s.registerGoogleUser(ctx, email, payload)
		if HasCode(err, ErrorConflict) {
			// A concurrent first sign-in won the insert; use its account.
			user, err = s.findUser(ctx, email)
			if err == nil && user == nil {
				err = NewConflictError("Username already taken")
			}
		}
		if err != nil {
			return "", err
		}
	}

	// Never attach a Google identity to an account someone registered with a password.
	if user.Provider != models.ProviderGoogle {
		log.WithField("username", email).Warn("google sign-in refused for password account")
		return "", NewConflictError("An account with this email already exists; sign in with its password")
	}
	if user.Disabled {
		return "", NewUnauthorizedError(msgCouldNotValidate)
	}
	return s.issue(user.Username)
}

func (s *AuthService) findUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIf(err, "failed to load user")
	}
	return &user, nil
}

// registerGoogleUser stores the account with a random password, so it can
// only sign in through Google.
func (s *AuthService) registerGoogleUser(ctx context.Context, email string, payload *idtoken.Payload) (*models.User, error) {
	secret, err := utils.GenerateSecret()
	if err != nil {
		return nil, errors.WrapIf(err, "failed to generate password")
	}
	var fullName *string
	if name, ok := payload.Claims["name"].(string); ok && name != "" {
		fullName = &name
	}
	return s.Register(ctx, RegisterInput{
		Username: email,
		Email:    &email,
		FullName: fullName,
		Password: secret,
		Provider: models.ProviderGoogle,
	})
}

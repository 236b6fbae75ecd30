package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"toyWholesale/auth"
	"toyWholesale/models"
	"toyWholesale/repository"
	"toyWholesale/storage"

	"go.uber.org/zap"
)

// Upload is a file received from a client form.
type Upload struct {
	Filename string
	Body     io.Reader
}

type Registration struct {
	Email        string
	Password     string
	CompanyName  string
	UNP          string
	DirectorName string
	Phone        string
	Address      string
}

type UserService struct {
	ur        repository.UserRepository
	sr        repository.SessionRepository
	tokens    *auth.TokenService
	files     storage.Storage
	log       *zap.Logger
	dummyHash string
}

func NewUserService(uRepo repository.UserRepository, sRepo repository.SessionRepository, tokens *auth.TokenService, files storage.Storage, log *zap.Logger) UserService {
	// compared against when the email is unknown so both login failures cost the same
	dummy, _ := uRepo.EncryptPassword("no-such-user-password")
	return UserService{
		ur:        uRepo,
		sr:        sRepo,
		tokens:    tokens,
		files:     files,
		log:       log.Named("users"),
		dummyHash: dummy,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (us *UserService) Register(ctx context.Context, reg Registration, logo *Upload) (uModel models.User_db, err error) {
	uModel = models.User_db{
		Email:        NormalizeEmail(reg.Email),
		CompanyName:  strings.TrimSpace(reg.CompanyName),
		UNP:          strings.TrimSpace(reg.UNP),
		DirectorName: strings.TrimSpace(reg.DirectorName),
		Phone:        strings.TrimSpace(reg.Phone),
		Address:      strings.TrimSpace(reg.Address),
		CreatedAt:    time.Now().UTC(),
	}

	var ex bool
	_, ex, err = us.ur.GetUserByEmail(ctx, uModel.Email)
	if err != nil {
		return
	}
	if ex {
		us.log.Info("Register: email already registered", zap.String("email", uModel.Email))
		err = models.ErrEmailTaken
		return
	}

	uModel.PasswordHash, err = us.ur.EncryptPassword(reg.Password)
	if err != nil {
		return
	}

	if logo != nil {
		var url string
		url, err = us.files.Save(ctx, storage.KindLogo, logo.Filename, logo.Body)
		if err != nil {
			err = uploadError(us.log, "Register", err)
			return
		}
		uModel.LogoURL = sql.NullString{String: url, Valid: true}
	}

	uModel.Id, err = us.ur.AddNewUser(ctx, uModel)
	if err != nil && uModel.LogoURL.Valid {
		discardUpload(ctx, us.files, us.log, "Register", uModel.LogoURL.String)
	}
	return
}

// Login checks the credentials and opens a session. Unknown email and wrong
// password produce the same error.
func (us *UserService) Login(ctx context.Context, email, password string) (uModel models.User_db, token string, err error) {
	var ex bool
	uModel, ex, err = us.ur.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return
	}
	if !ex {
		us.ur.VerifyPassword(us.dummyHash, password)
		err = models.ErrInvalidCredentials
		return
	}
	if !us.ur.VerifyPassword(uModel.PasswordHash, password) {
		us.log.Info("Login: wrong password", zap.Int("userId", uModel.Id))
		err = models.ErrInvalidCredentials
		return
	}

	var sessionId string
	sessionId, err = us.sr.CreateSession(ctx, uModel.Id, uModel.IsAdmin)
	if err != nil {
		return
	}
	token, err = us.tokens.Issue(sessionId, uModel.Id, uModel.IsAdmin)
	if err != nil {
		us.log.Error("Login: issue token", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// Authenticate resolves a token to its live session and extends the session.
func (us *UserService) Authenticate(ctx context.Context, token string) (user models.SessionUser, err error) {
	claims, e := us.tokens.Parse(token)
	if e != nil {
		err = models.ErrUnauthorized
		return
	}
	var ex bool
	user, ex, err = us.sr.GetSession(ctx, claims.SessionID)
	if err != nil {
		return
	}
	if !ex || user.UserId != claims.UserID {
		err = models.ErrUnauthorized
		return
	}
	err = us.sr.RefreshSession(ctx, claims.SessionID)
	return
}

func (us *UserService) Logout(ctx context.Context, sessionId string) error {
	return us.sr.DeleteSession(ctx, sessionId)
}

func (us *UserService) GetUser(ctx context.Context, userId int) (uModel models.User_db, err error) {
	var ex bool
	uModel, ex, err = us.ur.GetUserById(ctx, userId)
	if err != nil {
		return
	}
	if !ex {
		err = models.ErrNotFoundError
	}
	return
}

func (us *UserService) ListUsers(ctx context.Context) (users []models.User_db, err error) {
	users, err = us.ur.GetAllUsers(ctx)
	if users == nil && err == nil {
		users = []models.User_db{}
	}
	return
}

// EnsureAdmin creates the configured admin account when it does not exist yet.
func (us *UserService) EnsureAdmin(ctx context.Context, email, password string) (err error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil
	}
	existing, ex, err := us.ur.GetUserByEmail(ctx, email)
	if err != nil {
		return
	}
	if ex {
		if !existing.IsAdmin {
			us.log.Warn("EnsureAdmin: configured admin email belongs to a regular account", zap.String("email", email))
		}
		return nil
	}

	hash, err := us.ur.EncryptPassword(password)
	if err != nil {
		return
	}
	_, err = us.ur.AddNewUser(ctx, models.User_db{
		Email:        email,
		PasswordHash: hash,
		CompanyName:  "Administrator",
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, models.ErrEmailTaken) {
		return nil
	}
	if err == nil {
		us.log.Info("EnsureAdmin: admin account created", zap.String("email", email))
	}
	return
}

func uploadError(log *zap.Logger, op string, err error) error {
	if errors.Is(err, storage.ErrUnsupportedType) {
		return fmt.Errorf("%w: %w", models.ErrBadRequest, err)
	}
	log.Error(op+": save upload", zap.Error(err))
	return models.ErrServerError
}

// discardUpload removes a file whose owning row was never written.
// The caller's error wins, so a failed removal is only logged.
func discardUpload(ctx context.Context, files storage.Storage, log *zap.Logger, op, url string) {
	if err := files.Remove(context.WithoutCancel(ctx), url); err != nil {
		log.Warn(op+": remove orphaned upload", zap.String("url", url), zap.Error(err))
	}
}

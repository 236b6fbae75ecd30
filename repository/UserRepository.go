package repository

import (
	"context"
	"database/sql"
	"errors"

	"toyWholesale/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetUserById(ctx context.Context, id int) (models.User_db, bool, error)
	GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error)
	AddNewUser(ctx context.Context, uModel models.User_db) (newUserId int, err error)
	GetAllUsers(ctx context.Context) ([]models.User_db, error)
	CountUsers(ctx context.Context) (int, error)
	EncryptPassword(userPass string) (hashedPassword string, err error)
	VerifyPassword(hashedPassword string, sentPassword string) bool
}

type UserRepo struct {
	db   *sql.DB
	log  *zap.Logger
	cost int
}

func NewUserRepository(conn *sql.DB, log *zap.Logger) (UserRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &UserRepo{
		db:   conn,
		log:  log.Named("users"),
		cost: bcrypt.DefaultCost,
	}, nil
}

const userColumns = "id, email, password_hash, company_name, unp, director_name, phone, address, logo_url, is_admin, created_at"

func scanUser(row interface{ Scan(...any) error }, u *models.User_db) error {
	return row.Scan(&u.Id, &u.Email, &u.PasswordHash, &u.CompanyName, &u.UNP,
		&u.DirectorName, &u.Phone, &u.Address, &u.LogoURL, &u.IsAdmin, &u.CreatedAt)
}

func (u *UserRepo) getUser(ctx context.Context, op, where string, arg any) (uModel models.User_db, exists bool, err error) {
	row := u.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	err = scanUser(row, &uModel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		u.log.Error(op, zap.Error(err))
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (u *UserRepo) GetUserById(ctx context.Context, id int) (models.User_db, bool, error) {
	return u.getUser(ctx, "GetUserById", "id = $1", id)
}

// GetUserByEmail expects a normalized (lower-case) email.
func (u *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error) {
	return u.getUser(ctx, "GetUserByEmail", "email = $1", email)
}

func (u *UserRepo) AddNewUser(ctx context.Context, uModel models.User_db) (newUserId int, err error) {
	err = u.db.QueryRowContext(ctx, `INSERT INTO users
		(email, password_hash, company_name, unp, director_name, phone, address, logo_url, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		uModel.Email, uModel.PasswordHash, uModel.CompanyName, uModel.UNP, uModel.DirectorName,
		uModel.Phone, uModel.Address, uModel.LogoURL, uModel.IsAdmin, uModel.CreatedAt).Scan(&newUserId)
	if err != nil {
		if isUniqueViolation(err) {
			err = models.ErrEmailTaken
			return
		}
		u.log.Error("AddNewUser", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (u *UserRepo) GetAllUsers(ctx context.Context) (users []models.User_db, err error) {
	rows, err := u.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		u.log.Error("GetAllUsers", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	for rows.Next() {
		var uModel models.User_db
		if err = scanUser(rows, &uModel); err != nil {
			u.log.Error("GetAllUsers", zap.Error(err))
			err = models.ErrServerError
			return
		}
		users = append(users, uModel)
	}
	if err = rows.Err(); err != nil {
		u.log.Error("GetAllUsers", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (u *UserRepo) CountUsers(ctx context.Context) (n int, err error) {
	err = u.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	if err != nil {
		u.log.Error("CountUsers", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (u *UserRepo) EncryptPassword(userPass string) (hashedPassword string, err error) {
	var password []byte
	password, err = bcrypt.GenerateFromPassword([]byte(userPass), u.cost)
	if err != nil {
		u.log.Error("EncryptPassword", zap.Error(err))
		err = models.ErrServerError
		return
	}
	hashedPassword = string(password)
	return
}

func (u *UserRepo) VerifyPassword(hashedPassword string, sentPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(sentPassword)) == nil
}

// SetPasswordCost changes the bcrypt cost used for new hashes.
func (u *UserRepo) SetPasswordCost(cost int) {
	u.cost = cost
}

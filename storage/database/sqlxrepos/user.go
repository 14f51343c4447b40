package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lenswise/coachdesk/core"
	"github.com/lenswise/coachdesk/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// dbUser mirrors user.User with array-aware scanning for the roles column.
type dbUser struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	Timezone     string         `db:"timezone"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    time.Time      `db:"last_login"`
}

func (du dbUser) toUser() user.User {
	return user.User{
		ID:           du.ID,
		Name:         du.Name,
		Username:     du.Username,
		Email:        du.Email,
		IsActive:     du.IsActive,
		Roles:        du.Roles,
		Timezone:     du.Timezone,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt,
		UpdatedAt:    du.UpdatedAt,
		LastLogin:    du.LastLogin,
	}
}

func toUsers(dus []dbUser) []user.User {
	users := make([]user.User, 0, len(dus))
	for _, du := range dus {
		users = append(users, du.toUser())
	}
	return users
}

const userColumns = `id, name, username, email, is_active, roles, timezone, password_hash, created_at, updated_at, last_login`

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(column, value string, rerr error) error {
		if value == "" {
			return nil
		}
		var exists bool
		q := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM "user" WHERE %s = $1 AND NOT (id = ANY($2)))`, column)
		if err := repo.db.Get(&exists, q, value, pq.Array(exclIDs)); err != nil {
			return err
		}
		if exists {
			return rerr
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	q := `INSERT INTO "user" (id, name, username, email, is_active, roles, timezone, password_hash, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.Exec(q,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive,
		pq.Array(usr.Roles), usr.Timezone, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var dus []dbUser
	if err := repo.db.Select(&dus, `SELECT `+userColumns+` FROM "user"`); err != nil {
		return nil, err
	}
	return toUsers(dus), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getUserBy("id", id)
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getUserBy("username", username)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getUserBy("email", email)
}

func (repo *userRepository) getUserBy(column, value string) (user.User, error) {
	var du dbUser
	q := fmt.Sprintf(`SELECT %s FROM "user" WHERE %s = $1`, userColumns, column)
	if err := repo.db.Get(&du, q, value); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return du.toUser(), nil
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if len(filter.Roles) > 0 {
		roleConds := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roleConds = append(roleConds, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM unnest(roles) r WHERE r LIKE %s)", arg(role+"%")))
		}
		conds = append(conds, "("+strings.Join(roleConds, " OR ")+")")
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	q := `SELECT ` + userColumns + ` FROM "user"` + whereClause(conds) + orderClause(orderings)
	var dus []dbUser
	if err := repo.db.Select(&dus, q, args...); err != nil {
		return nil, err
	}
	return toUsers(dus), nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	q := `UPDATE "user"
	      SET name = $2, username = $3, email = $4, roles = $5, timezone = $6,
	          password_hash = $7, is_active = COALESCE($8, is_active), updated_at = $9
	      WHERE id = $1
	      RETURNING ` + userColumns
	var du dbUser
	err := repo.db.Get(&du, q,
		usr.ID, usr.Name, usr.Username, usr.Email, pq.Array(usr.Roles),
		usr.Timezone, usr.PasswordHash, isActive, usr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return du.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

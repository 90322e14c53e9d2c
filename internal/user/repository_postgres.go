package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	phoneConstraint     = "users_phone_key"
)

const (
	userColumns = `id, name, phone, age, gender, father_id, mother_id`

	findUserByPhoneQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE phone = $1
	`
	insertUserQuery = `
		INSERT INTO users (name, phone, age, gender, father_id, mother_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	insertSiblingsQuery = `
		INSERT INTO user_siblings (user_id, sibling_id)
		SELECT $1, unnest($2::int[])
	`
	findUserWithParentsQuery = `
		SELECT u.id, u.name, u.phone, u.age, u.gender, u.father_id, u.mother_id,
		       f.id, f.name, f.age, f.phone,
		       m.id, m.name, m.age, m.phone
		FROM users u
		LEFT JOIN users f ON f.id = u.father_id
		LEFT JOIN users m ON m.id = u.mother_id
		WHERE u.id = $1
	`
	// relation kinds: child, sibling (outgoing link), sibling_of (incoming link)
	findRelativesQuery = `
		SELECT 'child' AS kind, c.id, c.name, c.age, c.phone, c.gender
		FROM users c
		WHERE c.father_id = $1 OR c.mother_id = $1
		UNION ALL
		SELECT 'sibling' AS kind, s.id, s.name, s.age, s.phone, s.gender
		FROM user_siblings l
		JOIN users s ON s.id = l.sibling_id
		WHERE l.user_id = $1
		UNION ALL
		SELECT 'sibling_of' AS kind, s.id, s.name, s.age, s.phone, s.gender
		FROM user_siblings l
		JOIN users s ON s.id = l.user_id
		WHERE l.sibling_id = $1
		ORDER BY 1, 2
	`
	listUsersQuery = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id
	`
	listSiblingLinksQuery = `
		SELECT user_id, sibling_id
		FROM user_siblings
		ORDER BY user_id, sibling_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, findUserByPhoneQuery, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Create inserts the user row and its outgoing sibling links in one
// transaction so a dangling reference leaves nothing behind.
func (r *PostgresRepository) Create(ctx context.Context, input NewUser) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, insertUserQuery,
		input.Name,
		input.Phone,
		input.Age,
		input.Gender,
		input.FatherID,
		input.MotherID,
	).Scan(&id)
	if err != nil {
		return User{}, translateError(err)
	}

	if len(input.SiblingIDs) > 0 {
		if _, err := tx.ExecContext(ctx, insertSiblingsQuery, id, pq.Array(input.SiblingIDs)); err != nil {
			return User{}, translateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return User{}, err
	}

	return User{
		ID:       id,
		Name:     input.Name,
		Phone:    input.Phone,
		Age:      input.Age,
		Gender:   input.Gender,
		FatherID: input.FatherID,
		MotherID: input.MotherID,
	}, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (Record, error) {
	rec, err := scanUserWithParents(r.db.QueryRowContext(ctx, findUserWithParentsQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	rows, err := r.db.QueryContext(ctx, findRelativesQuery, id)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()

	rec.Children = []Relative{}
	rec.Siblings = []Relative{}
	rec.SiblingOf = []Relative{}
	for rows.Next() {
		var kind string
		var u User
		if err := rows.Scan(&kind, &u.ID, &u.Name, nullInt{&u.Age}, nullString{&u.Phone}, nullString{&u.Gender}); err != nil {
			return Record{}, err
		}
		switch kind {
		case "child":
			rec.Children = append(rec.Children, toRelative(u))
		case "sibling":
			rec.Siblings = append(rec.Siblings, toRelative(u))
		case "sibling_of":
			rec.SiblingOf = append(rec.SiblingOf, toRelative(u))
		}
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// List loads every user and every sibling link, then expands relations in
// memory instead of issuing per-user queries.
func (r *PostgresRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.listSiblingLinks(ctx)
	if err != nil {
		return nil, err
	}

	return assemble(users, links), nil
}

func (r *PostgresRepository) listSiblingLinks(ctx context.Context) ([]siblingLink, error) {
	rows, err := r.db.QueryContext(ctx, listSiblingLinksQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]siblingLink, 0)
	for rows.Next() {
		var l siblingLink
		if err := rows.Scan(&l.UserID, &l.SiblingID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	if err := scanner.Scan(
		&u.ID,
		&u.Name,
		nullString{&u.Phone},
		nullInt{&u.Age},
		nullString{&u.Gender},
		nullInt{&u.FatherID},
		nullInt{&u.MotherID},
	); err != nil {
		return User{}, err
	}
	return u, nil
}

func scanUserWithParents(scanner rowScanner) (Record, error) {
	var rec Record
	var fatherID, motherID sql.NullInt64
	var father, mother Parent

	if err := scanner.Scan(
		&rec.User.ID,
		&rec.User.Name,
		nullString{&rec.User.Phone},
		nullInt{&rec.User.Age},
		nullString{&rec.User.Gender},
		nullInt{&rec.User.FatherID},
		nullInt{&rec.User.MotherID},
		&fatherID, nullName{&father.Name}, nullInt{&father.Age}, nullString{&father.Phone},
		&motherID, nullName{&mother.Name}, nullInt{&mother.Age}, nullString{&mother.Phone},
	); err != nil {
		return Record{}, err
	}

	if fatherID.Valid {
		father.ID = int(fatherID.Int64)
		rec.Father = &father
	}
	if motherID.Valid {
		mother.ID = int(motherID.Int64)
		rec.Mother = &mother
	}
	return rec, nil
}

// translateError maps constraint violations raised by either the pgx or the
// lib/pq driver onto the package's sentinel errors.
func translateError(err error) error {
	var code, constraint string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, constraint = pgErr.Code, pgErr.ConstraintName
	case errors.As(err, &pqErr):
		code, constraint = string(pqErr.Code), pqErr.Constraint
	default:
		return err
	}

	switch {
	case code == uniqueViolation && constraint == phoneConstraint:
		return ErrPhoneExists
	case code == foreignKeyViolation:
		return fmt.Errorf("%w: %w", ErrReferenceNotFound, err)
	}
	return err
}

// nullString scans a nullable text column into a *string field.
type nullString struct{ dst **string }

func (n nullString) Scan(src any) error {
	var v sql.NullString
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = nil
	if v.Valid {
		s := v.String
		*n.dst = &s
	}
	return nil
}

// nullInt scans a nullable integer column into a *int field.
type nullInt struct{ dst **int }

func (n nullInt) Scan(src any) error {
	var v sql.NullInt64
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = nil
	if v.Valid {
		i := int(v.Int64)
		*n.dst = &i
	}
	return nil
}

// nullName scans a column that is only NULL when a LEFT JOIN missed.
type nullName struct{ dst *string }

func (n nullName) Scan(src any) error {
	var v sql.NullString
	if err := v.Scan(src); err != nil {
		return err
	}
	*n.dst = v.String
	return nil
}

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userRowColumns     = []string{"id", "name", "phone", "age", "gender", "father_id", "mother_id"}
	relativeRowColumns = []string{"kind", "id", "name", "age", "phone", "gender"}
	parentRowColumns   = []string{
		"id", "name", "phone", "age", "gender", "father_id", "mother_id",
		"f_id", "f_name", "f_age", "f_phone",
		"m_id", "m_name", "m_age", "m_phone",
	}
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgres_FindByPhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("WHERE phone =").WithArgs("111").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "Alice", "111", 30, "F", nil, nil))
	mock.ExpectQuery("WHERE phone =").WithArgs("999").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.FindByPhone(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, 30, *u.Age)
	assert.Nil(t, u.FatherID)

	_, err = repo.FindByPhone(context.Background(), "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_CreateWritesUserAndSiblingsInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Bob", "222", nil, nil, 1, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec("INSERT INTO user_siblings").
		WithArgs(5, pq.Array([]int{3, 4})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	u, err := repo.Create(context.Background(), NewUser{
		Name:       "Bob",
		Phone:      strPtr("222"),
		FatherID:   intPtr(1),
		SiblingIDs: []int{3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)
	assert.Equal(t, 1, *u.FatherID)
}

func TestPostgres_CreateWithoutSiblingsSkipsLinkInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Alice", nil, 30, "F", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	_, err := repo.Create(context.Background(), NewUser{Name: "Alice", Age: intPtr(30), Gender: strPtr("F")})
	require.NoError(t, err)
}

func TestPostgres_CreateMapsPhoneUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), NewUser{Name: "Eve", Phone: strPtr("111")})
	assert.ErrorIs(t, err, ErrPhoneExists)
}

func TestPostgres_CreateDanglingSiblingRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	fkErr := &pq.Error{
		Code:    "23503",
		Message: `insert or update on table "user_siblings" violates foreign key constraint "user_siblings_sibling_id_fkey"`,
		Detail:  `Key (sibling_id)=(9) is not present in table "users".`,
	}
	mock.ExpectExec("INSERT INTO user_siblings").WillReturnError(fkErr)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), NewUser{Name: "Zed", SiblingIDs: []int{9}})
	require.ErrorIs(t, err, ErrReferenceNotFound)
	require.ErrorIs(t, err, fkErr)
	assert.Contains(t, err.Error(), fkErr.Error())
}

func TestPostgres_CreateDanglingFatherKeepsDriverMessage(t *testing.T) {
	repo, mock := newMockRepo(t)

	fkErr := &pgconn.PgError{
		Code:           "23503",
		Message:        `insert or update on table "users" violates foreign key constraint "users_father_id_fkey"`,
		ConstraintName: "users_father_id_fkey",
	}
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").WillReturnError(fkErr)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), NewUser{Name: "Bob", FatherID: intPtr(77)})
	require.ErrorIs(t, err, ErrReferenceNotFound)
	assert.Contains(t, err.Error(), fkErr.Error())
}

func TestPostgres_CreatePassesThroughOtherErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), NewUser{Name: "X"})
	assert.ErrorIs(t, err, boom)
}

func TestPostgres_FindByIDExpandsRelations(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("LEFT JOIN users f").WithArgs(2).
		WillReturnRows(sqlmock.NewRows(parentRowColumns).
			AddRow(2, "Bob", "222", nil, "M", 1, nil, 1, "Alice", 30, "111", nil, nil, nil, nil))
	mock.ExpectQuery("UNION ALL").WithArgs(2).
		WillReturnRows(sqlmock.NewRows(relativeRowColumns).
			AddRow("child", 7, "Kid", 3, nil, nil).
			AddRow("sibling", 3, "Cat", nil, "333", "F").
			AddRow("sibling_of", 3, "Cat", nil, "333", "F").
			AddRow("sibling_of", 4, "Dan", nil, "444", "M"))

	rec, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)

	require.NotNil(t, rec.Father)
	assert.Equal(t, Parent{ID: 1, Name: "Alice", Age: intPtr(30), Phone: strPtr("111")}, *rec.Father)
	assert.Nil(t, rec.Mother)
	assert.Equal(t, []int{7}, relativeIDs(rec.Children))
	assert.Equal(t, []int{3}, relativeIDs(rec.Siblings))
	assert.Equal(t, []int{3, 4}, relativeIDs(rec.SiblingOf))
	assert.Equal(t, []int{3, 4}, relativeIDs(ToView(rec).Siblings))
}

func TestPostgres_FindByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("LEFT JOIN users f").WithArgs(42).
		WillReturnRows(sqlmock.NewRows(parentRowColumns))

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_ListAssemblesRelations(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users ORDER BY id").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(1, "Alice", "111", 30, "F", nil, nil).
			AddRow(2, "Bob", "222", nil, nil, 1, nil).
			AddRow(3, "Cat", nil, nil, nil, nil, 1))
	mock.ExpectQuery("FROM user_siblings ORDER BY user_id").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "sibling_id"}).AddRow(3, 2))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []int{2, 3}, relativeIDs(records[0].Children))
	assert.Equal(t, "Alice", records[1].Father.Name)
	assert.Equal(t, "Alice", records[2].Mother.Name)
	assert.Equal(t, []int{3}, relativeIDs(records[1].SiblingOf))
	assert.Equal(t, []int{2}, relativeIDs(records[2].Siblings))
	assert.Empty(t, records[0].Siblings)
}

func TestPostgres_ListQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users ORDER BY id").WillReturnError(errors.New("no such table"))

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

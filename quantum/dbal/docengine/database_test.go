package docengine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

const idColumn = "_id"

func openMemory(t *testing.T) *Database {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	return db
}

func model(db *Database, opts ...dbal.ModelOption) *dbal.Model {
	return dbal.NewModel(db, "users", append([]dbal.ModelOption{dbal.WithIDColumn(idColumn)}, opts...)...)
}

func seed(t *testing.T, db *Database, rows ...dbal.Row) {
	t.Helper()
	for _, r := range rows {
		m := model(db).Create()
		for k, v := range r {
			m.SetProp(k, v)
		}
		require.NoError(t, m.Save())
	}
}

func usersFixture() []dbal.Row {
	return []dbal.Row{
		{"firstname": "John", "lastname": "Doe", "age": 45, "role": "admin", "password": "x"},
		{"firstname": "Jane", "lastname": "Du", "age": 35, "role": "editor", "password": "y"},
	}
}

func TestDatabase_GetCountFirst(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)

	users, err := model(db).Get()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "John", users[0].Prop("firstname"))
	assert.Equal(t, int64(1), users[0].Prop(idColumn))
	assert.Equal(t, "Jane", users[1].Prop("firstname"))

	count, err := model(db).Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	m := model(db, dbal.WithHidden("password"))
	res, err := m.First()
	require.NoError(t, err)
	assert.Equal(t, "Doe", res.Unwrap()["lastname"])
	assert.NotContains(t, m.AsArray(), "password")
}

func TestDatabase_FindOne(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)

	m := model(db)
	res, err := m.FindOne(2)
	require.NoError(t, err)
	assert.Equal(t, "Jane", res.Unwrap()["firstname"])

	res, err = m.FindOne("1")
	require.NoError(t, err)
	assert.Equal(t, "John", res.Unwrap()["firstname"])

	res, err = m.FindOne(9)
	require.NoError(t, err)
	assert.True(t, res.IsNothing())
	assert.True(t, m.IsNew())

	res, err = model(db).FindOneBy("lastname", "Du")
	require.NoError(t, err)
	assert.Equal(t, 35, res.Unwrap()["age"])
}

func TestDatabase_Criteria(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)
	seed(t, db, dbal.Row{"firstname": "Jim", "lastname": "Beam", "age": 20, "role": nil})

	cases := []struct {
		name     string
		criteria []dbal.Criteria
		expected []string
	}{
		{"eq", []dbal.Criteria{dbal.C("firstname", operators.OperatorEq, "John")}, []string{"John"}},
		{"ne", []dbal.Criteria{dbal.C("firstname", operators.OperatorNe, "John")}, []string{"Jane", "Jim"}},
		{"gt across numeric types", []dbal.Criteria{dbal.C("age", operators.OperatorGt, 35.0)}, []string{"John"}},
		{"lte", []dbal.Criteria{dbal.C("age", operators.OperatorLte, int64(35))}, []string{"Jane", "Jim"}},
		{"in", []dbal.Criteria{dbal.C("role", operators.OperatorIn, []string{"admin", "editor"})}, []string{"John", "Jane"}},
		{"empty in", []dbal.Criteria{dbal.C("role", operators.OperatorIn, []string{})}, []string{}},
		{"not in skips null", []dbal.Criteria{dbal.C("role", operators.OperatorNotIn, []string{"admin"})}, []string{"Jane"}},
		{"like", []dbal.Criteria{dbal.C("firstname", operators.OperatorLike, "j%n%")}, []string{"John", "Jane"}},
		{"like single char", []dbal.Criteria{dbal.C("firstname", operators.OperatorLike, "ja_e")}, []string{"Jane"}},
		{"not like", []dbal.Criteria{dbal.C("lastname", operators.OperatorNotLike, "D%")}, []string{"Jim"}},
		{"null", []dbal.Criteria{dbal.C("role", operators.OperatorNull, nil)}, []string{"Jim"}},
		{"not null", []dbal.Criteria{dbal.C("role", operators.OperatorNotNull, nil)}, []string{"John", "Jane"}},
		{"missing field", []dbal.Criteria{dbal.C("email", operators.OperatorEq, "a@b.c")}, []string{}},
		{"mixed types", []dbal.Criteria{dbal.C("age", operators.OperatorEq, "45")}, []string{}},
		{"or group", []dbal.Criteria{
			dbal.Or(dbal.C("age", operators.OperatorLt, 21), dbal.C("firstname", operators.OperatorEq, "John")),
		}, []string{"John", "Jim"}},
		{"and with or", []dbal.Criteria{
			dbal.Or(dbal.C("age", operators.OperatorLt, 21), dbal.C("age", operators.OperatorGt, 40)),
			dbal.C("lastname", operators.OperatorEq, "Doe"),
		}, []string{"John"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := model(db)
			_, err := m.Criterias(c.criteria...)
			require.NoError(t, err)

			rows, err := m.Get()
			require.NoError(t, err)
			names := make([]string, 0, len(rows))
			for _, r := range rows {
				names = append(names, r.Prop("firstname").(string))
			}
			assert.Equal(t, c.expected, names)
		})
	}
}

func TestDatabase_RawIsUnsupported(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)

	m := model(db)
	_, err := m.Criteria("age", operators.OperatorRawEq, 45)
	require.NoError(t, err)

	_, err = m.Get()
	assert.ErrorIs(t, err, ErrRawUnsupported)
	assert.ErrorIs(t, err, dbal.ErrDataAccess)
}

func TestDatabase_GroupByHaving(t *testing.T) {
	db := openMemory(t)
	for i := 0; i < 5; i++ {
		role := "editor"
		if i%2 == 0 {
			role = "viewer"
		}
		seed(t, db, dbal.Row{"firstname": faker.Name().FirstName(), "role": role})
	}
	seed(t, db, dbal.Row{"firstname": faker.Name().FirstName(), "role": "admin"})

	m := model(db).GroupBy("role").OrderBy("role", dbal.Asc)
	rows, err := m.Get()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, dbal.Row{"role": "admin", CountColumn: int64(1)}, rows[0].AsArray())
	assert.Equal(t, dbal.Row{"role": "editor", CountColumn: int64(2)}, rows[1].AsArray())
	assert.Equal(t, dbal.Row{"role": "viewer", CountColumn: int64(3)}, rows[2].AsArray())

	m = model(db).GroupBy("role")
	_, err = m.Having(CountColumn, operators.OperatorGte, 2)
	require.NoError(t, err)
	count, err := m.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDatabase_OrderLimitOffsetSelect(t *testing.T) {
	db := openMemory(t)
	for i := 1; i <= 10; i++ {
		seed(t, db, dbal.Row{"firstname": faker.Name().FirstName(), "email": faker.Internet().Email(), "age": 20 + i%4})
	}

	m := model(db).Select(idColumn, "age").OrderBy("age", dbal.Desc).OrderBy(idColumn, dbal.Asc).Limit(3).Offset(1)
	rows, err := m.Get()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, dbal.Row{idColumn: int64(7), "age": 23}, rows[0].AsArray())
	assert.Equal(t, dbal.Row{idColumn: int64(2), "age": 22}, rows[1].AsArray())
	assert.Equal(t, dbal.Row{idColumn: int64(6), "age": 22}, rows[2].AsArray())

	p := model(db).Paginate(4, 3)
	items, err := p.Data()
	require.NoError(t, err)
	assert.Len(t, items, 2)
	last, err := p.LastPage()
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}

func TestDatabase_SaveUpdateDelete(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)

	m := model(db)
	_, err := m.FindOne(1)
	require.NoError(t, err)
	m.SetProp("age", 46)
	require.NoError(t, m.Save())

	res, err := model(db).FindOne(1)
	require.NoError(t, err)
	assert.Equal(t, 46, res.Unwrap()["age"])

	require.NoError(t, m.Delete())
	count, err := model(db).Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	seed(t, db, dbal.Row{"firstname": "Ann"})
	res, err = model(db).FindOneBy("firstname", "Ann")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Unwrap()[idColumn])
}

func TestDatabase_Persistence(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	seed(t, db, usersFixture()...)

	m := model(db)
	_, err = m.FindOne(2)
	require.NoError(t, err)
	require.NoError(t, m.Delete())

	assert.FileExists(t, filepath.Join(dir, "users", "1.json"))
	assert.NoFileExists(t, filepath.Join(dir, "users", "2.json"))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, reopened.Collections())

	res, err := model(reopened).FindOne(1)
	require.NoError(t, err)
	assert.Equal(t, dbal.Row{
		idColumn: int64(1), "firstname": "John", "lastname": "Doe", "age": int64(45), "role": "admin", "password": "x",
	}, res.Unwrap())

	seed(t, reopened, dbal.Row{"firstname": "Ann"})
	assert.FileExists(t, filepath.Join(dir, "users", "3.json"))
}

func TestDatabase_OpenRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "users"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users", "1.json"), []byte("{"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

func TestDatabase_Drop(t *testing.T) {
	db := openMemory(t)
	seed(t, db, usersFixture()...)

	require.NoError(t, db.Drop("users"))
	assert.Empty(t, db.Collections())
	assert.ErrorIs(t, db.Drop("users"), ErrCollectionNotFound)

	rows, err := model(db).Get()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDatabase_ConcurrentInserts(t *testing.T) {
	db := openMemory(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := model(db).Create()
			m.SetProp("firstname", fmt.Sprintf("user-%d", i))
			assert.NoError(t, m.Save())
		}(i)
	}
	wg.Wait()

	count, err := model(db).Count()
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}

func TestComparisonRegistry(t *testing.T) {
	reg := newDefaultComparisons()
	now := time.Now()

	assert.True(t, reg.Compare(int32(3), operators.OperatorEq, 3.0))
	assert.True(t, reg.Compare(uint8(2), operators.OperatorLt, int64(3)))
	assert.True(t, reg.Compare("b", operators.OperatorGt, "a"))
	assert.True(t, reg.Compare(now.Add(time.Second), operators.OperatorGt, now))
	assert.True(t, reg.Compare(true, operators.OperatorNe, false))
	assert.False(t, reg.Compare(nil, operators.OperatorEq, nil))
	assert.False(t, reg.Compare(1, operators.OperatorEq, "1"))
	assert.True(t, reg.Compare(1, operators.OperatorNe, "1"))

	assert.Equal(t, -1, reg.Order(nil, 1))
	assert.Equal(t, 1, reg.Order(2, 1))
	assert.Equal(t, 0, reg.Order(2, 2.0))
}

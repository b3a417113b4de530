package sqlstorage

import (
	"errors"
	"testing"

	"github.com/dszqbsm/jobcrawler/collector"
	"github.com/dszqbsm/jobcrawler/sqldb"
	"github.com/dszqbsm/jobcrawler/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mysqldb struct {
	created  []sqldb.TableData
	inserted []sqldb.TableData
	failOn   string
}

func (m *mysqldb) CreateTable(t sqldb.TableData) error {
	if m.failOn == "create" {
		return errors.New("create table failed")
	}
	m.created = append(m.created, t)
	return nil
}

func (m *mysqldb) Insert(t sqldb.TableData) error {
	if m.failOn == "insert" {
		return errors.New("insert failed")
	}
	m.inserted = append(m.inserted, t)
	return nil
}

func book(title, price string) *collector.DataCell {
	return &collector.DataCell{
		Table: "books",
		Data:  value.NewMap().With("title", value.String(title)).With("price-amount", value.String(price)),
	}
}

func TestSQLStorage_Flush(t *testing.T) {
	type fields struct {
		dataDocker []*collector.DataCell
		failOn     string
	}
	tests := []struct {
		name    string
		fields  fields
		wantErr bool
	}{
		{name: "empty", wantErr: false},
		{name: "no error", fields: fields{dataDocker: []*collector.DataCell{book("A", "1"), book("B", "2")}}, wantErr: false},
		{name: "insert error", fields: fields{dataDocker: []*collector.DataCell{book("A", "1")}, failOn: "insert"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mysqldb{}
			s := newStore(db, defaultOptions)
			require.NoError(t, s.Save(tt.fields.dataDocker...))
			db.failOn = tt.fields.failOn
			if err := s.Flush(); (err != nil) != tt.wantErr {
				t.Errorf("Flush() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Zero(t, s.pending())
		})
	}
}

func TestSaveCreatesTableOnce(t *testing.T) {
	db := &mysqldb{}
	s := newStore(db, defaultOptions)
	require.NoError(t, s.Save(book("A", "1")))
	require.NoError(t, s.Save(book("B", "2")))
	require.Len(t, db.created, 1)
	assert.True(t, db.created[0].AutoKey)
	assert.Equal(t, []sqldb.Field{{Title: "title", Type: "MEDIUMTEXT"}, {Title: "price-amount", Type: "MEDIUMTEXT"}},
		db.created[0].ColumnNames)

	require.NoError(t, s.Flush())
	require.Len(t, db.inserted, 1)
	assert.Equal(t, 2, db.inserted[0].DataCount)
	assert.Equal(t, []interface{}{"A", "1", "B", "2"}, db.inserted[0].Args)
}

func TestSaveBatch(t *testing.T) {
	db := &mysqldb{}
	o := defaultOptions
	o.BatchCount = 2
	s := newStore(db, o)
	require.NoError(t, s.Save(book("A", "1"), book("B", "2"), book("C", "3")))
	require.Len(t, db.inserted, 1)
	assert.Equal(t, 1, s.pending())
}

func TestSaveMissingColumn(t *testing.T) {
	db := &mysqldb{}
	s := newStore(db, defaultOptions)
	partial := &collector.DataCell{Table: "books", Data: value.NewMap().With("price-amount", value.String("5"))}
	require.NoError(t, s.Save(book("A", "1"), partial))
	require.NoError(t, s.Flush())
	assert.Equal(t, []interface{}{"A", "1", "", "5"}, db.inserted[0].Args)
}

func TestSaveCreateError(t *testing.T) {
	s := newStore(&mysqldb{failOn: "create"}, defaultOptions)
	assert.Error(t, s.Save(book("A", "1")))
}

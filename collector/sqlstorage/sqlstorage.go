package sqlstorage

// 把store操作产生的数据单元分批写入MySQL，每个表第一次出现时按首行的列建表

import (
	"github.com/dszqbsm/jobcrawler/collector"
	"github.com/dszqbsm/jobcrawler/sqldb"
	"github.com/dszqbsm/jobcrawler/value"
	"go.uber.org/zap"
)

type SqlStore struct {
	dataDocker map[string][]*collector.DataCell // 按表缓存待插入的数据单元
	order      []string                         // 表第一次出现的顺序，Flush按此顺序写入
	columns    map[string][]sqldb.Field         // 已创建表的列
	db         sqldb.DBer
	options
}

func New(opts ...Option) (*SqlStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}
	return newStore(db, options), nil
}

func newStore(db sqldb.DBer, o options) *SqlStore {
	return &SqlStore{
		dataDocker: make(map[string][]*collector.DataCell),
		columns:    make(map[string][]sqldb.Field),
		db:         db,
		options:    o,
	}
}

/*
输入一个或多个数据单元，输出一个错误

表不存在时先按该单元的列建表；缓存数量达到BatchCount时立即写入
*/
func (s *SqlStore) Save(dataCells ...*collector.DataCell) error {
	for _, cell := range dataCells {
		name := cell.GetTableName()
		if _, ok := s.columns[name]; !ok {
			columns := getFields(cell)
			if err := s.db.CreateTable(sqldb.TableData{
				TableName:   name,
				ColumnNames: columns,
				AutoKey:     true,
			}); err != nil {
				return err
			}
			s.columns[name] = columns
		}
		if _, ok := s.dataDocker[name]; !ok {
			s.order = append(s.order, name)
		}
		s.dataDocker[name] = append(s.dataDocker[name], cell)
		if s.pending() >= s.BatchCount {
			if err := s.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SqlStore) pending() int {
	n := 0
	for _, cells := range s.dataDocker {
		n += len(cells)
	}
	return n
}

/*
无输入，输出一个错误

每个表一条INSERT语句；行中缺少的列写空字符串，建表时没有的列被丢弃
*/
func (s *SqlStore) Flush() error {
	defer func() {
		s.dataDocker = make(map[string][]*collector.DataCell)
		s.order = nil
	}()
	for _, name := range s.order {
		cells := s.dataDocker[name]
		columns := s.columns[name]
		args := make([]interface{}, 0, len(cells)*len(columns))
		for _, cell := range cells {
			if extra := cell.Data.Len() - countKnown(cell.Data, columns); extra > 0 {
				s.logger.Warn("columns dropped", zap.String("table", name), zap.Int("count", extra))
			}
			for _, c := range columns {
				v, _ := cell.Data.GetString(c.Title)
				args = append(args, v)
			}
		}
		if err := s.db.Insert(sqldb.TableData{
			TableName:   name,
			ColumnNames: columns,
			Args:        args,
			DataCount:   len(cells),
		}); err != nil {
			return err
		}
	}
	return nil
}

func countKnown(row *value.Map, columns []sqldb.Field) int {
	n := 0
	for _, c := range columns {
		if row.Has(c.Title) {
			n++
		}
	}
	return n
}

func getFields(cell *collector.DataCell) []sqldb.Field {
	var columnNames []sqldb.Field
	for _, k := range cell.Data.Keys() {
		columnNames = append(columnNames, sqldb.Field{
			Title: k,
			Type:  "MEDIUMTEXT",
		})
	}
	return columnNames
}

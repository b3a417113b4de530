package sqldb

// 与MySQL交互：建表、批量插入，store操作通过它持久化结果

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var ErrNoColumn = errors.New("column can not be empty")

// 为数据库操作统一了规范，包括创建表、插入数据
type DBer interface {
	/*
	   输入一个TableData实例，输出一个error

	   该方法用于创建表（已存在时跳过），列名来自TableData.ColumnNames
	*/
	CreateTable(t TableData) error
	/*
	   输入一个TableData实例，输出一个error

	   该方法用于一次插入DataCount行，Args按行依次排列，长度必须等于列数乘以行数
	*/
	Insert(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

// 表示数据库表中的一个字段，包含字段名和字段类型
type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []interface{}
	DataCount   int
	AutoKey     bool
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.connURL)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(d.maxConn)
	db.SetMaxIdleConns(d.maxConn)
	if err = db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	query, err := CreateTableSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("create table", zap.String("sql", query))
	_, err = d.db.Exec(query)
	return err
}

func (d *Sqldb) Insert(t TableData) error {
	query, err := InsertSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("insert table", zap.String("sql", query), zap.Int("rows", t.DataCount))
	_, err = d.db.Exec(query, t.Args...)
	return err
}

// 展平后的列名含有"-"，标识符一律用反引号包裹
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func CreateTableSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrNoColumn
	}
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(QuoteIdent(t.TableName))
	sb.WriteString(" (")
	if t.AutoKey {
		sb.WriteString("id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}
	for i, c := range t.ColumnNames {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(QuoteIdent(c.Title) + " " + c.Type)
	}
	sb.WriteString(") DEFAULT CHARSET=utf8mb4;")
	return sb.String(), nil
}

// 形如 INSERT INTO `t`(`a`,`b`) VALUES (?,?),(?,?);
func InsertSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrNoColumn
	}
	if t.DataCount <= 0 || len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return "", errors.New("args do not match columns and data count")
	}
	cols := make([]string, len(t.ColumnNames))
	for i, c := range t.ColumnNames {
		cols[i] = QuoteIdent(c.Title)
	}
	blank := ",(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	return "INSERT INTO " + QuoteIdent(t.TableName) + "(" + strings.Join(cols, ",") + ") VALUES " +
		strings.Repeat(blank, t.DataCount)[1:] + ";", nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// 纯 Go 的 SQLite 驱动，内置 FTS5
	_ "modernc.org/sqlite"
)

// DefaultPath 是未配置 DATABASE_PATH 时使用的数据库文件。
const DefaultPath = "db/blog.db"

const driverName = "sqlite"

// Store 持有数据库连接，生命周期由调用方通过 Open / Close 显式管理。
type Store struct {
	sqlDB *sql.DB
	gdb   *gorm.DB
}

// Option 调整 Open 的行为。
type Option func(*openOptions)

type openOptions struct {
	gormLogger      logger.Interface
	migrationLogger MigrationLogger
}

// WithGormLogger 指定 gorm 使用的日志实现。
func WithGormLogger(l logger.Interface) Option {
	return func(o *openOptions) {
		o.gormLogger = l
	}
}

// WithMigrationLogger 指定迁移过程的日志输出。
func WithMigrationLogger(l MigrationLogger) Option {
	return func(o *openOptions) {
		o.migrationLogger = l
	}
}

// Open 打开（必要时创建）数据库文件，开启 WAL 与外键约束并执行迁移。
// 任何一步失败都会返回错误，调用方应视为启动失败。
func Open(ctx context.Context, databasePath string, opts ...Option) (*Store, error) {
	o := openOptions{
		gormLogger: logger.Default.LogMode(logger.Warn),
	}
	for _, opt := range opts {
		opt(&o)
	}

	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = DefaultPath
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driverName, buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, sqlDB, o.migrationLogger); err != nil {
		sqlDB.Close()
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		Conn:       sqlDB,
	}), &gorm.Config{
		Logger: o.gormLogger,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("init gorm: %w", err)
	}

	return &Store{sqlDB: sqlDB, gdb: gdb}, nil
}

// Gorm 返回共享的 gorm 句柄。
func (s *Store) Gorm() *gorm.DB {
	return s.gdb
}

// SQL 返回底层的 *sql.DB。
func (s *Store) SQL() *sql.DB {
	return s.sqlDB
}

// Close 关闭底层连接池，重复调用是安全的。
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}

// buildDSN 为每个新连接设置 WAL、外键和忙等待，事务以 IMMEDIATE 方式开启。
func buildDSN(path string) string {
	params := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}

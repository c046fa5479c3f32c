package service

import (
	"testing"

	"fintrack/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	return gormDB, mock
}

var userColumns = []string{"id", "name", "email", "password", "created_at", "updated_at"}

var transactionColumns = []string{
	"id", "user_id", "type", "amount", "description", "category_id",
	"transaction_date", "created_at", "updated_at", "category_name",
}

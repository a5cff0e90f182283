package client

import (
	"context"

	"gorm.io/gorm"
)

// SQLiteClient оборачивает gorm-соединение для проверок здоровья и закрытия
type SQLiteClient struct {
	DB *gorm.DB
}

func NewSQLiteClient(db *gorm.DB) *SQLiteClient {
	return &SQLiteClient{DB: db}
}

func (c *SQLiteClient) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *SQLiteClient) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package client

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const txMaxAttempts = 3

// TransactionWithRetry runs fn inside a gorm transaction, retrying a
// bounded number of times when the database aborts it with a deadlock or
// lock-wait timeout. Business errors returned by fn abort immediately.
func TransactionWithRetry(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// IsRetryable reports whether err is a transient transaction conflict.
func IsRetryable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1213 deadlock, 1205 lock wait timeout
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	// sqlite surfaces writer contention as SQLITE_BUSY / SQLITE_LOCKED
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

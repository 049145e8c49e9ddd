package dbutil

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a gorm handle for ctx. When tx is set, statements run on that
// *sql.Tx so gorm repositories join transactions opened by services.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	conn := db.WithContext(ctx)
	if tx != nil {
		conn.Statement.ConnPool = tx
	}
	return conn
}

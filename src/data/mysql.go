package data

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/types"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// Migrate creates or updates the schema for every model the services use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Group{},
		&types.GroupSetting{},
		&types.Setting{},
		&types.BlacklistWord{},
		&types.Suggestion{},
		&types.Report{},
		&types.Proposal{},
		&types.Ballot{},
	)
}

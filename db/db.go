package db

import (
	"fmt"
	"log"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

// Options selects the database: MySQL if MySQLDSN is set, then Postgres, then the SQLite file
type Options struct {
	MySQLDSN    string
	PostgresDSN string
	SQLiteFile  string
}

func Init(opts Options) {
	db, err := Open(opts)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case opts.MySQLDSN != "":
		dsn, err := normalizeMySQLDSN(opts.MySQLDSN)
		if err != nil {
			return nil, err
		}
		log.Print("Using MySQL database")
		dialector = mysql.Open(dsn)
	case opts.PostgresDSN != "":
		log.Print("Using Postgres database")
		dialector = postgres.Open(opts.PostgresDSN)
	case opts.SQLiteFile != "":
		log.Printf("Using SQLite database %s", opts.SQLiteFile)
		dialector = sqlite.Open(opts.SQLiteFile)
	default:
		return nil, fmt.Errorf("no database configured")
	}
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// normalizeMySQLDSN makes sure DATETIME columns are scanned into time.Time as UTC
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

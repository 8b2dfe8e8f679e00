package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"
	_ "modernc.org/sqlite"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/fs"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"

	migrationsDir = "migrations"
)

var ErrUnknownEngine = errors.New("unknown database engine")

func postgresURL(dbName string, admin bool, conf *core.Config) string {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func sqliteDSN(conf *core.Config) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + conf.Database.Path + "?" + q.Encode()
}

func open(dbName string, admin bool, conf *core.Config) (*sql.DB, error) {
	switch conf.Database.Engine {
	case EnginePostgres:
		return sql.Open(EnginePostgres, postgresURL(dbName, admin, conf))
	case EngineSQLite:
		db, err := sql.Open(EngineSQLite, sqliteDSN(conf))
		if err != nil {
			return nil, err
		}
		// a single writer avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", conf.Database.Engine)
	}
}

// Open connects to the application database and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	return sqlx.NewDb(db, conf.Database.Engine), nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(db *sql.DB, q string, args ...interface{}) (bool, error) {
	var found bool
	rows, err := db.Query(q, args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err = rows.Scan(&found); err != nil {
			return false, err
		}
	}
	return found, rows.Err()
}

func createAppUser(db *sql.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD '%s'", conf.Database.User, conf.Database.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sql.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the app user and database on PostgreSQL.
// SQLite creates its database file on first connection.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.IsSQLite() {
		return nil
	}

	// connect as admin
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()
	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	if err = createDB(appDB, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// MigrationsDir is the directory of appfs.FS holding the migrations of `engine`.
func MigrationsDir(engine string) string {
	return path.Join(migrationsDir, engine)
}

// SetDialect points goose to the SQL dialect of `engine`.
func SetDialect(engine string) error {
	dialect := engine
	if engine == EngineSQLite {
		dialect = "sqlite3"
	}
	return goose.SetDialect(dialect)
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	if err := SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.Up(db.DB, appfs.FS, MigrationsDir(db.DriverName())); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Addr          string
	Store         string
	DBUrl         string
	MongoURI      string
	MongoDB       string
	TokenSecret   string
	TokenTTL      time.Duration
	CascadeDelete bool
	AdminUser     string
	AdminPassword string
	Debug         bool
}

// ParseFlags loads .env if present, then reads the command line. Every flag
// defaults to its QFORM_* environment variable.
func ParseFlags() (Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[1:])
}

func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("quick-form", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", env("QFORM_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("QFORM_PORT", 80), "listen port number")
	fs.StringVar(&cfg.Store, "store", env("QFORM_STORE", StoreSQLite), "document store: sqlite, mongo or memory")
	fs.StringVar(&cfg.DBUrl, "db-url", env("QFORM_DB_URL", "qform.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", env("QFORM_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	fs.StringVar(&cfg.MongoDB, "mongo-db", env("QFORM_MONGO_DB", "qform"), "MongoDB database name")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("QFORM_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("QFORM_TOKEN_TTL", 120), "token TTL in seconds")
	fs.BoolVar(&cfg.CascadeDelete, "cascade-delete", envBool("QFORM_CASCADE_DELETE", false), "delete a form's submissions with the form")
	fs.StringVar(&cfg.AdminUser, "admin-user", env("QFORM_ADMIN_USER", ""), "create or update this author at startup")
	fs.StringVar(&cfg.AdminPassword, "admin-password", env("QFORM_ADMIN_PASSWORD", ""), "password for -admin-user")
	fs.BoolVar(&cfg.Debug, "debug", envBool("QFORM_DEBUG", false), "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.Store != StoreSQLite && cfg.Store != StoreMongo && cfg.Store != StoreMemory:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	case cfg.AdminUser != "" && cfg.AdminPassword == "":
		err = errors.New("missing parameter -admin-password")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	if v, err := strconv.ParseUint(os.Getenv(key), 10, 0); err == nil {
		return uint(v)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

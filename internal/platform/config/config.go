package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"permit-history/internal/domain/permits"
)

// Drivers de snapshot store soportados.
const (
	DriverMemory    = "memory"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverS3        = "s3"
	DriverPostgREST = "postgrest"
)

const DefaultPageSize = 1000

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool

	AccessKeyID     string
	SecretAccessKey string
}

type PostgRESTConfig struct {
	URL    string
	APIKey string
	Table  string
}

type StoreConfig struct {
	Driver      string
	PostgresDSN string
	SQLitePath  string
	S3          S3Config
	PostgREST   PostgRESTConfig
	// PageSize acota cada página al leer el histórico completo.
	PageSize int
}

type Config struct {
	Port         string
	Store        StoreConfig
	DayLocation  *time.Location
	IngestAPIKey string
	Departments  permits.DepartmentTable
}

// Load carga un .env opcional (no pisa variables ya definidas) y construye la config desde el entorno.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv construye la config con un lookup inyectable (tests).
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port: get("PORT", "8080"),
		Store: StoreConfig{
			Driver:      strings.ToLower(get("SNAPSHOT_STORE", DriverMemory)),
			PostgresDSN: get("DB_DSN", ""),
			SQLitePath:  get("SQLITE_PATH", "permit-history.db"),
			S3: S3Config{
				Bucket:    get("S3_BUCKET", ""),
				Region:    get("S3_REGION", "us-east-1"),
				Endpoint:  get("S3_ENDPOINT", ""),
				Prefix:    get("S3_PREFIX", "snapshots/"),
				PathStyle: strings.EqualFold(get("S3_PATH_STYLE", "false"), "true"),

				AccessKeyID:     get("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: get("S3_SECRET_ACCESS_KEY", ""),
			},
			PostgREST: PostgRESTConfig{
				URL:    get("POSTGREST_URL", ""),
				APIKey: get("POSTGREST_KEY", ""),
				Table:  get("POSTGREST_TABLE", "backup_excel"),
			},
			PageSize: DefaultPageSize,
		},
		IngestAPIKey: get("INGEST_API_KEY", ""),
		Departments:  permits.DefaultDepartmentTable(),
	}

	if v := get("PAGE_SIZE", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("PAGE_SIZE must be a positive integer, got %q", v)
		}
		cfg.Store.PageSize = n
	}

	loc, err := time.LoadLocation(get("DAY_LOCATION", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("DAY_LOCATION: %w", err)
	}
	cfg.DayLocation = loc

	if path := get("DEPARTMENTS_FILE", ""); path != "" {
		table, err := LoadDepartments(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Departments = table
	}

	return cfg, cfg.Validate()
}

// Validate revisa que el driver elegido tenga lo que necesita.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("DB_DSN is required for the postgres store")
		}
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 store")
		}
	case DriverPostgREST:
		if c.Store.PostgREST.URL == "" {
			return errors.New("POSTGREST_URL is required for the postgrest store")
		}
	default:
		return fmt.Errorf("unsupported SNAPSHOT_STORE %q", c.Store.Driver)
	}
	return nil
}

// departmentsFile es el formato YAML de la tabla usuario -> departamento:
//
//	owners:
//	  UF183530: ELECTRICAL
//	  UF999999: GE
type departmentsFile struct {
	ReplaceDefaults bool              `yaml:"replace_defaults"`
	Owners          map[string]string `yaml:"owners"`
}

// LoadDepartments lee la tabla desde YAML. Las entradas se suman a la tabla por defecto
// salvo replace_defaults: true. Cada valor debe ser un id de departamento conocido.
func LoadDepartments(path string) (permits.DepartmentTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments %s: %w", path, err)
	}
	var f departmentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse departments %s: %w", path, err)
	}

	table := permits.DepartmentTable{}
	if !f.ReplaceDefaults {
		table = permits.DefaultDepartmentTable()
	}
	for owner, raw := range f.Owners {
		owner = strings.TrimSpace(owner)
		if owner == "" {
			continue
		}
		d, err := permits.ParseDepartment(raw)
		if err != nil {
			return nil, fmt.Errorf("departments %s: owner %s: %w", path, owner, err)
		}
		table[owner] = d
	}
	return table, nil
}

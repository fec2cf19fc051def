package domain

import (
	"fmt"
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/connvault/internal/validation"
)

// Kind is the database engine a profile points at.
type Kind string

const (
	// KindMySQL is a networked MySQL or MariaDB server.
	KindMySQL Kind = "MySQL"

	// KindSQLite is a local SQLite database file.
	KindSQLite Kind = "SQLite"
)

// ParseKind accepts a kind name in any letter case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return KindMySQL, nil
	case "sqlite":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidProfile, s)
	}
}

// DefaultMySQLPort is used when a MySQL profile leaves the port empty.
const DefaultMySQLPort = 3306

// ConnectionProfile holds what is needed to open one database connection.
//
// Host, Port, User, Password and Database apply to MySQL; Path applies to SQLite.
// The JSON field names are the persisted format and must not change.
type ConnectionProfile struct {
	Kind     Kind   `json:"type"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
	Path     string `json:"db_path,omitempty"`
}

// Validate checks the fields required by the profile kind. Host names and
// credentials are not judged; only their presence is.
func (p ConnectionProfile) Validate() error {
	isMySQL := p.Kind == KindMySQL
	isSQLite := p.Kind == KindSQLite

	err := validation.ValidateStruct(&p,
		validation.Field(&p.Kind,
			validation.Required,
			validation.In(KindMySQL, KindSQLite),
		),
		validation.Field(&p.Host,
			validation.When(isMySQL, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&p.Port,
			validation.When(isMySQL, validation.Min(0), validation.Max(65535)),
		),
		validation.Field(&p.User,
			validation.When(isMySQL, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&p.Path,
			validation.When(isSQLite, validation.Required, customValidation.NotBlank),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Address returns host:port for MySQL profiles, applying the default port.
func (p ConnectionProfile) Address() string {
	port := p.Port
	if port == 0 {
		port = DefaultMySQLPort
	}
	return fmt.Sprintf("%s:%d", p.Host, port)
}

// Label is a short, secret-free description suitable for listings and logs.
func (p ConnectionProfile) Label() string {
	switch p.Kind {
	case KindMySQL:
		if p.Database != "" {
			return fmt.Sprintf("MySQL %s@%s/%s", p.User, p.Address(), p.Database)
		}
		return fmt.Sprintf("MySQL %s@%s", p.User, p.Address())
	case KindSQLite:
		return "SQLite " + p.Path
	default:
		return string(p.Kind)
	}
}

// Redacted returns a copy with the password masked.
func (p ConnectionProfile) Redacted() ConnectionProfile {
	if p.Password != "" {
		p.Password = "********"
	}
	return p
}

// CloneProfiles returns a copy of profiles that shares no backing array.
// A nil input yields an empty, non-nil slice.
func CloneProfiles(profiles []ConnectionProfile) []ConnectionProfile {
	out := make([]ConnectionProfile, len(profiles))
	copy(out, profiles)
	return out
}

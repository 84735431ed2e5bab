package authapi

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Default identities assigned when the environment does not override them.
// The issuer id must exist in the issuers table of the target deployment.
const (
	defaultIssuerID = "d582df1f-3642-4191-b822-0c9a73719259"
	defaultRoleID   = "37d1a9b2-4f08-4f0b-9171-3e20a7b2a171"
)

// Config controls API behavior.
type Config struct {
	// IssuerID is the trusted issuer recorded in every minted token.
	IssuerID uuid.UUID

	// DefaultRole is assigned to accounts created through signup.
	DefaultRole uuid.UUID

	MaxBodyBytes int64
}

// LoadConfigFromEnv loads API config from environment variables with
// defaults. Malformed uuids fall back rather than fail; the token issuer id
// is monitoring metadata, not a secret.
func LoadConfigFromEnv() Config {
	return Config{
		IssuerID:     envUUID("COMMERCE_JWT_ISSUER", defaultIssuerID),
		DefaultRole:  envUUID("COMMERCE_DEFAULT_ROLE", defaultRoleID),
		MaxBodyBytes: envInt64("COMMERCE_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}
}

func envUUID(key, def string) uuid.UUID {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = def
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.MustParse(def)
	}
	return id
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

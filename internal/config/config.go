package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings parses the capacity table
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. The types reflect how the
// values are used in the application: strings for identifiers and
// secrets, ints for durations, costs and capacities.
type Config struct {
	Env             string         // application environment (e.g. "dev", "prod")
	Port            string         // HTTP port to listen on
	DBUser          string         // database username
	DBPass          string         // database password (optional)
	DBHost          string         // database host address
	DBPort          string         // database port number
	DBName          string         // database name
	JWTSecret       string         // secret used to sign JWTs
	AccessTTLMin    int            // access token time-to-live in minutes
	RefreshTTLDays  int            // refresh token time-to-live in days
	BcryptCost      int            // bcrypt cost for password hashing
	Capacity        map[string]int // per-game-mode participant limits
	CapacityDefault int            // limit for game modes absent from the table
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// The capacity table is optional: CAPACITY_TABLE takes the form
// "1v1=2,2v2=4,tournament=16" and CAPACITY_DEFAULT applies to modes
// not listed (default 4).
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		Capacity:        parseCapacityTable(os.Getenv("CAPACITY_TABLE")),
		CapacityDefault: intOr("CAPACITY_DEFAULT", 4),
	}
}

// parseCapacityTable reads a "mode=limit,mode=limit" list into a map.
// Malformed or non-positive entries are skipped with a warning rather
// than halting startup; the engine falls back to the default for
// those modes.
func parseCapacityTable(raw string) map[string]int {
	table := map[string]int{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		mode, limit, ok := strings.Cut(entry, "=")
		if !ok {
			log.Printf("config: skipping malformed capacity entry %q", entry)
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil || n < 1 {
			log.Printf("config: skipping capacity entry %q: not a positive integer", entry)
			continue
		}
		table[strings.TrimSpace(mode)] = n
	}
	return table
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable with a default.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

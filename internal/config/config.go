package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tiffarshi-web/pswdirect/internal/model"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Operational business parameters (rates,
// radii, surge zones) are only the seed values here: admins adjust them
// at runtime and the live copy is persisted in the settings table.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
	}
}

// DefaultSettings builds the operational settings seeded from the
// environment. Rates are read in cents; SURGE_ZONES takes the form
// "prefix:flatCents:hourlyCents" entries separated by commas, e.g.
// "M5:500:100,K1:250:0".
func DefaultSettings() model.OperationalSettings {
	return model.OperationalSettings{
		Rates: model.RateTable{
			StandardHomeCareCents:      int64(envInt("RATE_STANDARD_CENTS", 2500)),
			HospitalOrDoctorVisitCents: int64(envInt("RATE_HOSPITAL_CENTS", 3000)),
		},
		SurgeZones:         parseSurgeZones(os.Getenv("SURGE_ZONES")),
		ServiceRadiusKm:    envFloat("SERVICE_RADIUS_KM", 75),
		ReopenWindowHours:  envFloat("LANGUAGE_REOPEN_HOURS", 2),
		CheckInToleranceKm: envFloat("CHECKIN_TOLERANCE_KM", 1),
	}
}

func parseSurgeZones(s string) []model.SurgeZone {
	var zones []model.SurgeZone
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 || fields[0] == "" {
			continue
		}
		flat, err1 := strconv.ParseInt(fields[1], 10, 64)
		hourly, err2 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil {
			log.Printf("ignoring malformed surge zone entry: %q", part)
			continue
		}
		zones = append(zones, model.SurgeZone{
			Prefix:      strings.ToUpper(fields[0]),
			FlatCents:   flat,
			HourlyCents: hourly,
		})
	}
	return zones
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
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}

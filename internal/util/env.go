package util

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// DotEnvTryLoad loads the given dotenv file into the process environment if
// it exists. Variables already set in the environment take precedence.
func DotEnvTryLoad(filename string) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return
	}

	if err := gotenv.Load(filename); err != nil {
		log.Warn().Str("filename", filename).Err(err).Msg("Failed to load dotenv file")
	}
}

// GetEnv returns the value of the environment variable or a default.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt returns an environment variable parsed as int or a default.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsInt64 returns an environment variable parsed as int64 or a default.
func GetEnvAsInt64(key string, defaultVal int64) int64 {
	strVal := GetEnv(key, "")
	if val, err := strconv.ParseInt(strVal, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsBool returns an environment variable parsed as bool or a default.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")
	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsStringArr returns an environment variable split on the given
// separator (default ",") or a default.
func GetEnvAsStringArr(key string, defaultVal []string, separator ...string) []string {
	strVal := GetEnv(key, "")
	if len(strVal) == 0 {
		return defaultVal
	}

	sep := ","
	if len(separator) >= 1 {
		sep = separator[0]
	}

	return strings.Split(strVal, sep)
}

package util

import (
	"os"
	"strconv"
	"strings"
)

const EnvironmentPrefix = "TRANSFERBOARD_"

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		if strings.HasPrefix(pair[0], EnvironmentPrefix) {
			environmentVariables[pair[0]] = pair[1]
		}
	}

	return environmentVariables
}

// GetEnvironmentInt returns the integer value of key, or fallback when the
// variable is unset or not a number.
func GetEnvironmentInt(env map[string]string, key string, fallback int) int {
	if env[key] == "" {
		return fallback
	}

	if n, err := strconv.Atoi(env[key]); err == nil {
		return n
	}

	return fallback
}

package config

import "os"

func IsDebug() bool {
	return os.Getenv("LISBOT_DEBUG") == "1"
}

package newsfeedcli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// ConfigFileName is resolved against the working directory.
const ConfigFileName = "newsfeed.conf"

// configKeys maps config-file keys to flag names. The file carries the same
// keys the original service shipped with, one "key = value" pair per line.
var configKeys = map[string]string{
	"serviceEndpoint":         "service-endpoint",
	"awsRegion":               "aws-region",
	"awsAccessKeyId":          "aws-access-key-id",
	"awsSecretKey":            "aws-secret-key",
	"awsSecretName":           "aws-secret-name",
	"daxCluster":              "dax-cluster",
	"env":                     "env",
	"dbReqMaxRetryCount":      "db-req-max-retry-count",
	"dbReqRetryIntervalMs":    "db-req-retry-interval-ms",
	"dbOldNewsPurgeAgeSecs":   "db-old-news-purge-age-secs",
	"newsPollingIntervalSecs": "news-polling-interval-secs",
	"opsPort":                 "ops-port",
}

// SeedFromConfigFile assigns values from ./newsfeed.conf to any flag that was
// not set explicitly via the command line or environment. A missing file is
// not an error.
func SeedFromConfigFile(c *cli.Context) error {
	f, err := os.Open(ConfigFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open config file %v: %w", ConfigFileName, err)
	}
	defer f.Close()

	defined := make(map[string]bool)
	for _, flag := range c.App.Flags {
		for _, name := range flag.Names() {
			defined[name] = true
		}
	}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("malformed line %v in %v: %q", line, ConfigFileName, text)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		flagName, ok := configKeys[key]
		if !ok {
			return fmt.Errorf("unknown key %q at line %v in %v", key, line, ConfigFileName)
		}

		if !defined[flagName] || c.IsSet(flagName) {
			continue // command line and environment win over the file
		}
		if err := c.Set(flagName, value); err != nil {
			return fmt.Errorf("invalid value for %v in %v: %w", key, ConfigFileName, err)
		}
	}
	return scanner.Err()
}

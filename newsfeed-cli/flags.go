package newsfeedcli

import "github.com/urfave/cli/v2"

var Opts struct {
	Env             string
	ServiceEndpoint string

	AWSRegion      string
	AWSAccessKeyID string
	AWSSecretKey   string
	AWSSecretName  string
	DAXCluster     string

	DBReqMaxRetryCount      int
	DBReqRetryIntervalMs    int
	DBOldNewsPurgeAgeSecs   int
	NewsPollingIntervalSecs int

	OpsPort      int
	EnsureTables bool
	Metrics      bool
}

func StringFlag(name, usage string, dest *string, value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Value:       value,
		EnvVars:     []string{envVar(name)},
		Destination: dest,
	}
}

func IntFlag(name, usage string, dest *int, value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:        name,
		Usage:       usage,
		Value:       value,
		EnvVars:     []string{envVar(name)},
		Destination: dest,
	}
}

func BoolFlag(name, usage string, dest *bool) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        name,
		Usage:       usage,
		EnvVars:     []string{envVar(name)},
		Destination: dest,
	}
}

var (
	EnvFlag             = StringFlag("env", "environment (table name prefix)", &Opts.Env, "local")
	ServiceEndpointFlag = StringFlag("service-endpoint", "bind address of the gRPC listening endpoint", &Opts.ServiceEndpoint, "0.0.0.0:8080")

	AWSRegionFlag      = StringFlag("aws-region", "backing-store region", &Opts.AWSRegion, "us-east-1")
	AWSAccessKeyIDFlag = StringFlag("aws-access-key-id", "backing-store credential", &Opts.AWSAccessKeyID, "")
	AWSSecretKeyFlag   = StringFlag("aws-secret-key", "backing-store credential", &Opts.AWSSecretKey, "")
	AWSSecretNameFlag  = StringFlag("aws-secret-name", "load credentials from this Secrets Manager secret instead of flags", &Opts.AWSSecretName, "")
	DAXClusterFlag     = StringFlag("dax-cluster", "DAX cluster to connect to instead of DynamoDB directly", &Opts.DAXCluster, "")

	DBReqMaxRetryCountFlag      = IntFlag("db-req-max-retry-count", "per-operation retry cap for store requests", &Opts.DBReqMaxRetryCount, 2)
	DBReqRetryIntervalMsFlag    = IntFlag("db-req-retry-interval-ms", "sleep between store request retries", &Opts.DBReqRetryIntervalMs, 30)
	DBOldNewsPurgeAgeSecsFlag   = IntFlag("db-old-news-purge-age-secs", "purge threshold applied on unsubscribe", &Opts.DBOldNewsPurgeAgeSecs, 60)
	NewsPollingIntervalSecsFlag = IntFlag("news-polling-interval-secs", "writer-loop poll period", &Opts.NewsPollingIntervalSecs, 5)

	OpsPortFlag      = IntFlag("ops-port", "port for the ops HTTP surface; 0 disables it", &Opts.OpsPort, 0)
	EnsureTablesFlag = BoolFlag("ensure-tables", "create the backing tables if they do not exist", &Opts.EnsureTables)
	MetricsFlag      = BoolFlag("metrics", "publish CloudWatch metrics", &Opts.Metrics)
)

var CommonFlags = []cli.Flag{
	EnvFlag,
	AWSRegionFlag,
	AWSAccessKeyIDFlag,
	AWSSecretKeyFlag,
	AWSSecretNameFlag,
	DAXClusterFlag,
	DBReqMaxRetryCountFlag,
	DBReqRetryIntervalMsFlag,
}

var ServerFlags = []cli.Flag{
	ServiceEndpointFlag,
	DBOldNewsPurgeAgeSecsFlag,
	NewsPollingIntervalSecsFlag,
	OpsPortFlag,
	EnsureTablesFlag,
	MetricsFlag,
}

func envVar(flagName string) string {
	out := make([]byte, 0, len(flagName))
	for i := 0; i < len(flagName); i++ {
		c := flagName[i]
		switch {
		case c == '-':
			out = append(out, '_')
		case 'a' <= c && c <= 'z':
			out = append(out, c-'a'+'A')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

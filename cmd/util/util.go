package util

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hightman/xunsearch/lib/cache"
	"github.com/hightman/xunsearch/lib/metrics"
	"github.com/hightman/xunsearch/rpc/client"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger(common.LoggerCli)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupProjectFlags adds the project and connection flags to a command group
func SetupProjectFlags(cmd *cobra.Command) {
	key := "project"
	cmd.PersistentFlags().StringP(key, "p", "demo", WrapString("Project name, path of a project file (.ini, .yaml) or inline ini data. Names are looked up as $XS_APP_ROOT/<name>.ini"))

	key = "connect-timeout"
	cmd.PersistentFlags().Int(key, common.DefaultConnectTimeoutSecond, WrapString("The connect timeout in seconds of tcp and unix connections"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY on server connections"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval of server connections (in seconds, 0 disables keepalive)"))
}

// InitClientConfig loads .env files and binds XS_* environment variables
func InitClientConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("xs")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds the flags of a command (including inherited ones)
// to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Flags())
}

// GetClientConfig reads the connection configuration from viper
func GetClientConfig() common.ClientConfig {
	conf := common.DefaultClientConfig()
	conf.TimeoutSecond = viper.GetInt("timeout")
	conf.ConnectTimeoutSecond = viper.GetInt("connect-timeout")
	conf.TCPNoDelay = viper.GetBool("tcp-nodelay")
	conf.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	conf.LogLevel = viper.GetString("log-level")
	return conf
}

// Session is the project context of one cli invocation together with the
// optional metrics server and count cache
type Session struct {
	XS *client.XS

	counts          *cache.CountCache
	stopMetrics     func(context.Context) error
	shutdownTimeout time.Duration
}

// OpenSession initializes logging and loads the project named by the
// project flag
func OpenSession(ctx context.Context) (*Session, error) {
	conf := GetClientConfig()
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}
	Logger.Debugf("using configuration:%s", conf.String())

	s := &Session{shutdownTimeout: 5 * time.Second}
	opts := []client.Option{client.WithConfig(conf)}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		s.stopMetrics = metrics.StartServer(addr)
	}

	projectName := viper.GetString("project")
	if addr := viper.GetString("redis-addr"); addr != "" {
		counts, err := cache.Dial(ctx, addr, projectName, viper.GetDuration("cache-ttl"))
		if err != nil {
			Logger.Warningf("count cache disabled: %v", err)
		} else {
			s.counts = counts
			opts = append(opts, client.WithCountCache(counts))
		}
	}

	xs, err := client.Load(projectName, opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.XS = xs
	return s, nil
}

// Charset returns the charset requested with the charset flag, empty if the
// project default applies
func Charset() string {
	return viper.GetString("charset")
}

// Close closes the project connections, the cache and the metrics server
func (s *Session) Close() error {
	var errs []error
	if s.XS != nil {
		errs = append(errs, s.XS.Close())
	}
	if s.counts != nil {
		errs = append(errs, s.counts.Close())
	}
	if s.stopMetrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		errs = append(errs, s.stopMetrics(ctx))
	}
	return errors.Join(errs...)
}

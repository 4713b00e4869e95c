package cli

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	verbose bool
	jsonLog bool
	color   string

	hadWarnings *atomic.Bool
	hadErrors   *atomic.Bool
}

// SetupRoot adds the logging flags to root and installs the global logger before any command runs.
func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	commonCfg.hadWarnings = atomic.NewBool(false)
	commonCfg.hadErrors = atomic.NewBool(false)

	flags := root.PersistentFlags()
	flags.BoolVarP(&commonCfg.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colour output: auto, always or never")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logOpts := logging.LogOpts{
			Verbose: commonCfg.verbose,
			Color:   commonCfg.color,
			DefaultLevels: map[string]zapcore.Level{
				"construct": zap.InfoLevel,
			},
			HadWarnings: commonCfg.hadWarnings,
			HadErrors:   commonCfg.hadErrors,
		}
		if commonCfg.jsonLog {
			logOpts.Encoding = "json"
		}
		zap.ReplaceGlobals(logOpts.NewLogger())
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck
	}
}

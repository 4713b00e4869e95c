package cli

import (
	"fmt"
	"os"

	"github.com/jenkins-ecs/jenkins-ecs/pkg/config"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/infra/cfn"
	kio "github.com/jenkins-ecs/jenkins-ecs/pkg/io"
	"github.com/jenkins-ecs/jenkins-ecs/pkg/jenkins"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type JenkinsMain struct {
	Version string
	// LookupEnv reads the process environment, [os.LookupEnv] when nil.
	LookupEnv func(string) (string, bool)
}

type synthConfig struct {
	config  string
	outDir  string
	format  string
	set     []string
	strict  bool
	showAll bool
}

func (jm JenkinsMain) Main() {
	root := jm.NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func (jm JenkinsMain) NewRootCmd() *cobra.Command {
	var (
		commonCfg CommonConfig
		synthCfg  synthConfig
	)
	root := &cobra.Command{
		Use:          "jenkins-ecs",
		Short:        "Synthesize the deployment templates of a Jenkins master/worker setup on ECS Fargate",
		Version:      jm.Version,
		SilenceUsage: true,
	}
	SetupRoot(root, &commonCfg)

	flags := root.PersistentFlags()
	flags.StringVarP(&synthCfg.config, "config", "c", "", "Config file (json, yaml or toml)")
	flags.StringVarP(&synthCfg.outDir, "out", "o", "", "Output directory (default from config: cdk.out)")
	flags.StringVarP(&synthCfg.format, "format", "F", "", "Template format: json or yaml")
	flags.StringArrayVar(&synthCfg.set, "set", nil, "Override a config value, eg. --set master.cpu=1024")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Write the templates, asset manifests and deploy script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := jm.synth(synthCfg)
			if err == nil && synthCfg.strict && commonCfg.hadWarnings.Load() {
				err = fmt.Errorf("warnings were logged and --strict is set")
			}
			return jm.handle(cmd, commonCfg, err)
		},
	}
	synthCmd.Flags().BoolVar(&synthCfg.strict, "strict", false, "Fail if any warning was logged")

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the templates with the ones previously written to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jm.handle(cmd, commonCfg, jm.diff(cmd, synthCfg))
		},
	}
	diffCmd.Flags().BoolVar(&synthCfg.showAll, "all", false, "Also list unchanged stacks")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the stacks in deployment order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return jm.handle(cmd, commonCfg, jm.list(cmd, synthCfg))
		},
	}

	root.AddCommand(synthCmd, diffCmd, listCmd)
	return root
}

// handle logs a command's error. Cobra is then told not to print it again.
func (jm JenkinsMain) handle(cmd *cobra.Command, commonCfg CommonConfig, err error) error {
	if err != nil {
		ErrorHandler{Verbose: commonCfg.verbose}.PrintErr(err)
		cmd.Root().SilenceErrors = true
	}
	return err
}

func (jm JenkinsMain) readConfig(synthCfg synthConfig) (config.Application, error) {
	appCfg := config.Default()
	if synthCfg.config != "" {
		var err error
		appCfg, err = config.ReadConfig(synthCfg.config)
		if err != nil {
			return appCfg, err
		}
	}

	lookup := jm.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	appCfg.Environment = config.FromEnv(lookup).Merge(appCfg.Environment)

	overrides, err := config.ParseOverrides(synthCfg.set)
	if err != nil {
		return appCfg, err
	}
	if err := appCfg.ApplyOverrides(overrides); err != nil {
		return appCfg, err
	}
	if synthCfg.format != "" {
		appCfg.Format = synthCfg.format
	}
	if synthCfg.outDir != "" {
		appCfg.OutDir = synthCfg.outDir
	} else {
		// out_dir from a config file is relative to that file, like the build contexts
		appCfg.OutDir = appCfg.ResolvePath(appCfg.OutDir)
	}
	return appCfg, nil
}

func (jm JenkinsMain) compile(synthCfg synthConfig) (config.Application, *cfn.Assembly, error) {
	appCfg, err := jm.readConfig(synthCfg)
	if err != nil {
		return appCfg, nil, err
	}
	zap.S().Debugf("deploying to %s", appCfg.Environment)

	app, _, err := jenkins.Build(appCfg)
	if err != nil {
		return appCfg, nil, err
	}
	assembly, err := cfn.Compile(app, cfn.Options{Format: appCfg.Format, OutDir: appCfg.OutDir})
	if err != nil {
		return appCfg, nil, err
	}
	return appCfg, assembly, nil
}

func (jm JenkinsMain) synth(synthCfg synthConfig) error {
	appCfg, assembly, err := jm.compile(synthCfg)
	if err != nil {
		return err
	}
	if err := kio.OutputTo(assembly.Files, appCfg.OutDir); err != nil {
		return err
	}
	zap.S().Infof("Synthesized %d stacks to %s", len(assembly.Manifest.Stacks), appCfg.OutDir)
	return nil
}

func (jm JenkinsMain) diff(cmd *cobra.Command, synthCfg synthConfig) error {
	appCfg, assembly, err := jm.compile(synthCfg)
	if err != nil {
		return err
	}
	diffs, err := cfn.Diff(appCfg.OutDir, assembly)
	if err != nil {
		return err
	}
	return PrintDiffs(cmd.OutOrStdout(), diffs, synthCfg.showAll)
}

func (jm JenkinsMain) list(cmd *cobra.Command, synthCfg synthConfig) error {
	appCfg, err := jm.readConfig(synthCfg)
	if err != nil {
		return err
	}
	app, _, err := jenkins.Build(appCfg)
	if err != nil {
		return err
	}
	return PrintStacks(cmd.OutOrStdout(), app)
}

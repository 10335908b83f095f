// Package cmd provides the root command and CLI setup for deobf.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"deobf.dev/pkg/deobf/internal/adapter"
	"deobf.dev/pkg/deobf/internal/controller"
	"deobf.dev/pkg/deobf/internal/domain"
	m "deobf.dev/pkg/deobf/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var mappingStore adapter.MappingStore
var workflow domain.Workflow
var ui controller.UI

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// extensionFlag selects which files are treated as listings.
var extensionFlag string

var verboseFlag bool
var logFileFlag string

var mappingFlag string
var mappingFormatFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = newSourceFSAdapter()
	mappingStore = adapter.NewMappingStore()
	workflow = domain.NewWorkflow(fsAdapter, mappingStore, ui)
}

// newSourceFSAdapter caches listings between the scan and rewrite passes,
// falling back to plain disk access if the cache cannot be built.
func newSourceFSAdapter() adapter.SourceFSAdapter {
	local := adapter.NewLocalSourceFSAdapter()

	cached, err := adapter.NewCachingSourceFSAdapter(local, adapter.DefaultContentCacheSize)
	if err != nil {
		return local
	}

	return cached
}

const pathsHelp = `Each directory is processed as an independent tree:
  - deobf run                 deobfuscate the current directory
  - deobf run out/smali       deobfuscate one decompiled tree
  - deobf run a/smali b/smali several trees, processed in parallel with -p
Directories passed together must not contain one another.`

const rootLongDescription = `Deobf renames obfuscated identifiers in decompiled bytecode listings
(smali). Classes with one or two letter names become DeobfClassN, and short
field and method names become fieldN and methodN, consistently across the
whole tree.

` + pathsHelp

const runLongDescription = `Deobfuscate the given directories in place (default: current directory).

The tree is scanned once to build the rename tables and then every listing
is rewritten with them. Use --dry-run with --diff to preview the changes.

` + pathsHelp

const listLongDescription = `Scan the given directories and print the rename tables without
modifying any file.

` + pathsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deobf",
		Short: "Smali identifier deobfuscator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files whose relative path matches regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&extensionFlag, extensionFlagName, viper.GetString(extensionConfigKey), "extension of listing files")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(extensionFlagName), extensionConfigKey)

	cmd.PersistentFlags().StringVarP(&mappingFlag, mappingFlagName, "m", viper.GetString(mappingConfigKey), "write the rename map to this file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(mappingFlagName), mappingConfigKey)

	cmd.PersistentFlags().StringVar(&mappingFormatFlag, mappingFormatFlagName, viper.GetString(mappingFormatConfigKey), "rename map format, yaml or json (default: from the file extension)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(mappingFormatFlagName), mappingFormatConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// parsePaths converts positional arguments to roots, defaulting to the
// current directory.
func parsePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{"."}
	}

	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// engineOptions builds the scan and rewrite options shared by run and list.
func engineOptions() (domain.Options, error) {
	exclude, err := domain.CompileExcludes(viper.GetStringSlice(excludeConfigKey))
	if err != nil {
		return domain.Options{}, err
	}

	return domain.Options{
		Extension:  viper.GetString(extensionConfigKey),
		Exclude:    exclude,
		MemberRefs: viper.GetBool(memberRefsConfigKey),
	}, nil
}

// mappingTarget returns the configured mapping path and its format.
func mappingTarget() (m.Path, adapter.MappingFormat, error) {
	path := m.Path(viper.GetString(mappingConfigKey))
	if path == "" {
		return "", "", nil
	}

	value := viper.GetString(mappingFormatConfigKey)
	if value == "" {
		return path, adapter.FormatForPath(path), nil
	}

	format, err := adapter.ParseMappingFormat(value)
	if err != nil {
		return "", "", err
	}

	return path, format, nil
}

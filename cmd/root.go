package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/praetorian-inc/blackcat/internal/config"
	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/logs"
	"github.com/praetorian-inc/blackcat/internal/message"
	op "github.com/praetorian-inc/blackcat/internal/output_providers"
	o "github.com/praetorian-inc/blackcat/pkg/options"
	"github.com/praetorian-inc/blackcat/pkg/types"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logFile string
	quiet   bool
	noColor bool
	silent  bool
	verbose bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blackcat",
	Short: "BlackCat is a CLI tool for offensive security testing of Azure and Entra ID environments.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		message.SetQuiet(quiet)
		message.SetNoColor(noColor)
		message.SetSilent(silent)
		logs.SetVerbose(verbose)
		logs.ConsoleLogger()

		if logFile != "" {
			logger, _, err := logs.FileLogger(logFile)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
		}

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}

		message.Banner()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blackcat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON debug logs to a file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational messages")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "suppress all messages")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP(o.OutputOpt.Name, o.OutputOpt.Short, o.OutputOpt.Value, o.OutputOpt.Description)
}

// newSession builds the shared per-run state from the loaded config.
func newSession(cmd *cobra.Command) *helpers.Session {
	sess := helpers.NewSession(cfg)
	if noCache, err := cmd.Flags().GetBool(o.NoCacheOpt.Name); err == nil {
		sess.NoCache = noCache
	}
	return sess
}

func options2Flag(options []*types.Option, cmd *cobra.Command) {
	for _, option := range options {
		option2Flag(option, cmd)
	}
}

func option2Flag(option *types.Option, cmd *cobra.Command) {
	switch option.Type {
	case types.String:
		cmd.Flags().StringP(option.Name, option.Short, option.Value, option.Description)
	case types.Bool:
		value, _ := strconv.ParseBool(option.Value)
		cmd.Flags().BoolP(option.Name, option.Short, value, option.Description)
	case types.Int:
		intValue, _ := strconv.Atoi(option.Value)
		cmd.Flags().IntP(option.Name, option.Short, intValue, option.Description)
	}

	if option.Required {
		cmd.MarkFlagRequired(option.Name)
	}
}

// getOpts resolves flag values back into the option set and validates it.
func getOpts(cmd *cobra.Command, required []*types.Option) ([]*types.Option, error) {
	opts := getGlobalOpts(cmd)

	for _, opt := range required {
		resolved := *opt
		switch opt.Type {
		case types.String:
			resolved.Value, _ = cmd.Flags().GetString(opt.Name)
		case types.Bool:
			value, _ := cmd.Flags().GetBool(opt.Name)
			resolved.Value = strconv.FormatBool(value)
		case types.Int:
			value, _ := cmd.Flags().GetInt(opt.Name)
			resolved.Value = strconv.Itoa(value)
		}
		opts = append(opts, &resolved)
	}

	if err := o.Validate(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func getGlobalOpts(cmd *cobra.Command) []*types.Option {
	opts := []*types.Option{}
	output := o.OutputOpt
	output.Value, _ = cmd.Flags().GetString(output.Name)
	opts = append(opts, &output)

	return opts
}

// defaultProviders is the provider set shared by the recon modules: results
// go to the console and to a JSON file under the output directory.
var defaultProviders = types.OutputProviders{
	op.NewConsoleProvider,
	op.NewJsonFileProvider,
}

// renderProviders instantiates a provider constructor list with the resolved
// options.
func renderProviders(ctors types.OutputProviders, opts []*types.Option) []types.OutputProvider {
	providers := make([]types.OutputProvider, 0, len(ctors))
	for _, ctor := range ctors {
		providers = append(providers, ctor(opts))
	}
	return providers
}

// writeResult routes one result through every configured output provider.
func writeResult(providers []types.OutputProvider, result types.Result) {
	for _, provider := range providers {
		if err := provider.Write(result); err != nil {
			message.Error("Output provider failed: %v", err)
		}
	}
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/drainzo/internal/utils"

	// Registers the pixeldrain extractor.
	_ "github.com/tanq16/drainzo/internal/extract/pixeldrain"
)

var (
	verbose   bool
	timeout   time.Duration
	kaTimeout time.Duration
	userAgent string
	headers   []string
)

var DrainzoVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "drainzo",
	Short:   "Drainzo is a fast CLI downloader for pixeldrain",
	Version: DrainzoVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(verbose)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *utils.DrainzoHTTPClient {
	return utils.NewDrainzoHTTPClient(utils.HTTPClientConfig{
		Timeout:   timeout,
		KATimeout: kaTimeout,
		UserAgent: userAgent,
		Headers:   utils.ParseHeaderArgs(headers),
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", time.Minute, "Response header timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.BrowserUserAgent, "User agent")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newPluginsCmd())
}

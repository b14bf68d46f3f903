// Package main provides the mihcsme command line tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lacdr/mihcsme-go/pkg/mihcsme"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/config"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/models"
	"github.com/lacdr/mihcsme-go/pkg/mihcsme/omero"
)

var (
	flagServer    string
	flagServerID  int
	flagUsername  string
	flagPassword  string
	flagNamespace string
	flagDebug     bool

	outputPath string
	pretty     bool
	screenID   int64
	replace    bool
	dryRun     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mihcsme",
		Short: "Manage MIHCSME metadata on an OMERO server",
		Long: `mihcsme parses MIHCSME metadata workbooks and synchronizes them with
map annotations on an OMERO screen.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "OMERO.web base URL (default from config or MIHCSME_SERVER)")
	rootCmd.PersistentFlags().IntVar(&flagServerID, "omero-server-id", 0, "OMERO server index in OMERO.web (default 1)")
	rootCmd.PersistentFlags().StringVarP(&flagUsername, "username", "u", "", "OMERO username")
	rootCmd.PersistentFlags().StringVarP(&flagPassword, "password", "p", "", "OMERO password (or MIHCSME_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "Base annotation namespace (default MIHCSME)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	parseCmd := &cobra.Command{
		Use:   "parse [input.xlsx]",
		Short: "Parse a metadata workbook and output JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	uploadCmd := &cobra.Command{
		Use:   "upload [input.xlsx]",
		Short: "Upload workbook metadata to a screen as map annotations",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}
	uploadCmd.Flags().Int64Var(&screenID, "screen", 0, "Target screen ID (required)")
	uploadCmd.Flags().BoolVar(&replace, "replace", false, "Delete existing annotations in the namespace first")
	uploadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve plates and wells without writing")
	_ = uploadCmd.MarkFlagRequired("screen")

	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download screen metadata annotations as JSON",
		RunE:  runDownload,
	}
	downloadCmd.Flags().Int64Var(&screenID, "screen", 0, "Source screen ID (required)")
	downloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	downloadCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	_ = downloadCmd.MarkFlagRequired("screen")

	rootCmd.AddCommand(parseCmd, uploadCmd, downloadCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if flagDebug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// settings merges config file, environment, and flags (flags win).
type settings struct {
	server    string
	serverID  int
	username  string
	password  string
	namespace string
}

func loadSettings() (*settings, error) {
	env := config.OSReader{}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}

	s := &settings{
		server:    cfg.Server,
		serverID:  cfg.ServerID,
		username:  cfg.Username,
		password:  config.Password(env),
		namespace: cfg.Namespace,
	}
	if flagServer != "" {
		s.server = flagServer
	}
	if flagServerID > 0 {
		s.serverID = flagServerID
	}
	if flagUsername != "" {
		s.username = flagUsername
	}
	if flagPassword != "" {
		s.password = flagPassword
	}
	if flagNamespace != "" {
		s.namespace = flagNamespace
	}

	if s.server == "" {
		return nil, fmt.Errorf("no server configured (use --server, %s, or the config file)", config.EnvServer)
	}
	if s.username == "" {
		return nil, fmt.Errorf("no username configured (use --username, %s, or the config file)", config.EnvUsername)
	}
	if s.password == "" {
		return nil, fmt.Errorf("no password configured (use --password or %s)", config.EnvPassword)
	}
	return s, nil
}

// connect logs in and returns the client plus a logout function for defer.
func connect(ctx context.Context, s *settings, log *zap.Logger) (*omero.Client, func(), error) {
	client, err := omero.NewClient(s.server, s.username, s.password,
		omero.WithServerID(s.serverID),
		omero.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, nil, err
	}
	logout := func() {
		if err := client.Logout(ctx); err != nil {
			log.Warn("Logout failed", zap.Error(err))
		}
	}
	return client, logout, nil
}

func runParse(_ *cobra.Command, args []string) error {
	md, err := mihcsme.ParseFile(args[0])
	if err != nil {
		return err
	}
	return writeJSON(md)
}

func runUpload(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := loadSettings()
	if err != nil {
		return err
	}

	md, err := mihcsme.ParseFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, logout, err := connect(ctx, s, log)
	if err != nil {
		return err
	}
	defer logout()

	opts := mihcsme.Options{
		Namespace: s.namespace,
		Replace:   replace,
		DryRun:    dryRun,
	}
	uploader := mihcsme.NewUploader(client, opts, log)
	report, err := uploader.Upload(ctx, md, screenID)
	if err != nil {
		return err
	}

	fmt.Printf("Upload %s: %d screen annotations, %d well annotations, %d deleted\n",
		report.RunID, report.ScreenAnnotations, report.WellAnnotations, report.Deleted)
	return nil
}

func runDownload(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	s, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, logout, err := connect(ctx, s, log)
	if err != nil {
		return err
	}
	defer logout()

	md, err := mihcsme.Download(ctx, client, screenID, mihcsme.Options{Namespace: s.namespace}, log)
	if err != nil {
		return err
	}
	return writeJSON(md)
}

func writeJSON(md *models.Metadata) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(md, "", "  ")
	} else {
		data, err = json.Marshal(md)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, append(data, '\n'), 0o644)
	}
	fmt.Println(string(data))
	return nil
}

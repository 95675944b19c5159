package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudkeep/cloudkeep/internal/backup/config"
	"github.com/cloudkeep/cloudkeep/internal/backup/engine"
	"github.com/cloudkeep/cloudkeep/internal/backup/manifest"
	"github.com/cloudkeep/cloudkeep/internal/backup/storage"
	"github.com/cloudkeep/cloudkeep/internal/utils"
	"github.com/cloudkeep/cloudkeep/internal/version"
)

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "cloudkeep",
	Short:   "Multi-cloud backup CLI",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		showHeader()
		return runMenu(cmd.Context())
	},
}

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle (loadConfig refers back to rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	}
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("file-list", "f", config.DefaultFileList, "Newline-separated list of files to back up")
	rootCmd.PersistentFlags().StringP("manifest", "m", config.DefaultManifest, "Manifest file recording confirmed uploads")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
}

func loadConfig() error {
	// Credentials may live in a .env file, like classic cloud CLI setups.
	_ = godotenv.Load()

	viper.BindPFlag("file_list", rootCmd.PersistentFlags().Lookup("file-list"))
	viper.BindPFlag("manifest_path", rootCmd.PersistentFlags().Lookup("manifest"))

	// Mirror the conventional provider env vars.
	viper.BindEnv("aws.access_key", "AWS_ACCESS_KEY_ID")
	viper.BindEnv("aws.secret_key", "AWS_SECRET_ACCESS_KEY")
	viper.BindEnv("aws.bucket", "AWS_BUCKET_NAME")
	viper.BindEnv("aws.region", "AWS_REGION")
	viper.BindEnv("aws.endpoint", "AWS_ENDPOINT_URL")
	viper.BindEnv("gcp.project", "GCP_PROJECT_ID")
	viper.BindEnv("gcp.bucket", "GCP_BUCKET_NAME")
	viper.BindEnv("gcp.credentials", "GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("azure.connection_string", "AZURE_CONNECTION_STRING")
	viper.BindEnv("azure.container", "AZURE_CONTAINER_NAME")

	viper.SetEnvPrefix("CLOUDKEEP")
	viper.AutomaticEnv()

	return nil
}

func buildConfig() (*config.Config, error) {
	cfg := &config.Config{
		S3: &config.S3Config{
			AccessKey: viper.GetString("aws.access_key"),
			SecretKey: viper.GetString("aws.secret_key"),
			Bucket:    viper.GetString("aws.bucket"),
			Region:    viper.GetString("aws.region"),
			Endpoint:  viper.GetString("aws.endpoint"),
		},
		GCS: &config.GCSConfig{
			ProjectID:       viper.GetString("gcp.project"),
			Bucket:          viper.GetString("gcp.bucket"),
			CredentialsFile: viper.GetString("gcp.credentials"),
		},
		Azure: &config.AzureConfig{
			ConnectionString: viper.GetString("azure.connection_string"),
			Container:        viper.GetString("azure.container"),
		},
		FileList:     viper.GetString("file_list"),
		ManifestPath: viper.GetString("manifest_path"),
		LogFile:      viper.GetString("log_file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEngine(ctx context.Context) (*engine.Engine, *config.Config, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	backends, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	store := manifest.Open(cfg.ManifestPath)

	eng, err := engine.New(backends, store)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).Print(utils.CloudKeepArt + "\n\n")
	fmt.Printf("%s %s\n", version.AppName, version.Short())
}

// runMenu drives the interactive session: list, upload from the file list,
// download by serial, exit.
func runMenu(ctx context.Context) error {
	eng, cfg, err := newEngine(ctx)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\nSelect an option:")
		fmt.Println("1. List backed-up files")
		fmt.Println("2. Upload files from", cfg.FileList)
		fmt.Println("3. Download backed-up files")
		fmt.Println("4. Exit")
		fmt.Print("\nEnter your choice (1-4): ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			listing := eng.BuildListing(ctx)
			if len(listing.Rows) == 0 {
				fmt.Println("No files found in backup storage.")
				continue
			}
			listing.Render(os.Stdout)

		case "2":
			if err := runSync(ctx, eng, cfg.FileList); err != nil {
				fmt.Println(red(err.Error()))
			}

		case "3":
			listing := eng.BuildListing(ctx)
			if len(listing.Rows) == 0 {
				fmt.Println("No files available to download.")
				continue
			}
			listing.Render(os.Stdout)

			fmt.Print("\nEnter serial number(s) to download (e.g., 1 or 1,2,3): ")
			if !scanner.Scan() {
				return scanner.Err()
			}

			serials, err := parseSerials(scanner.Text())
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			downloadSerials(ctx, eng, listing, serials)

		case "4":
			fmt.Println("Exiting CloudKeep.")
			return nil

		default:
			fmt.Println(red("Invalid choice. Please select 1, 2, 3, or 4."))
		}
	}
}

func downloadSerials(ctx context.Context, eng *engine.Engine, listing *engine.Listing, serials []int) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(red(err.Error()))
		return
	}

	for _, sn := range serials {
		localPath, err := eng.DownloadBySerial(ctx, sn, listing, cwd)
		if err != nil {
			fmt.Printf("%s\n", red(fmt.Sprintf("Failed to download serial %d: %v", sn, err)))
			continue
		}
		fmt.Printf("%s\n", green("Downloaded "+localPath))
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cloudkeep/cloudkeep/internal/backup/engine"
	"github.com/cloudkeep/cloudkeep/internal/utils"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload files from the backup file list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			eng, cfg, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			return runSync(cmd.Context(), eng, cfg.FileList)
		},
	}
}

func runSync(ctx context.Context, eng *engine.Engine, fileList string) error {
	paths, err := utils.ReadFileList(fileList)
	if err != nil {
		// A missing list is not fatal; there is simply nothing to do.
		slog.Error("file list not found", "path", fileList, "error", err)
		fmt.Println(yellow("No files to upload."))
		return nil
	}
	if len(paths) == 0 {
		fmt.Println(yellow("No files to upload."))
		return nil
	}

	fmt.Println("Checking files to upload...")
	result, err := eng.Sync(ctx, paths)
	if err != nil {
		return err
	}

	fmt.Printf("%s uploaded, %s failed, %d already backed up, %d already on backends, %d missing\n",
		green(fmt.Sprint(result.Uploaded)),
		red(fmt.Sprint(result.Failed)),
		result.AlreadyBacked,
		result.AlreadyRemote,
		result.Missing,
	)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/obentoo/pip-updater/internal/common/logger"
	"github.com/obentoo/pip-updater/internal/common/output"
	"github.com/obentoo/pip-updater/internal/schedule"
	"github.com/spf13/cobra"
)

// scheduleExceptions makes the scheduled run apply the exceptions file
var scheduleExceptions bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run pip-updater periodically from crontab",
	Long: `Register, show or remove a crontab entry that runs pip-updater unattended.

Examples:
  pip-updater schedule set "0 4 * * *"             Every day at 04:00
  pip-updater schedule set @weekly --exceptions    Weekly, honoring exceptions
  pip-updater schedule show
  pip-updater schedule remove`,
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set <cron expression>",
	Short: "Install or update the scheduled job",
	Args:  cobra.MinimumNArgs(1),
	Run:   runScheduleSet,
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the scheduled job",
	Args:  cobra.NoArgs,
	Run:   runScheduleShow,
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the scheduled job",
	Args:  cobra.NoArgs,
	Run:   runScheduleRemove,
}

func init() {
	scheduleSetCmd.Flags().BoolVarP(&scheduleExceptions, "exceptions", "e", false, "Apply the exceptions file on scheduled runs")

	scheduleCmd.AddCommand(scheduleSetCmd, scheduleShowCmd, scheduleRemoveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleSet(cmd *cobra.Command, args []string) {
	expr := strings.Join(args, " ")
	if err := schedule.Validate(expr); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cfg, cfgPath := loadConfig()

	exe, err := os.Executable()
	if err != nil {
		logger.Error("locating pip-updater executable: %v", err)
		os.Exit(1)
	}

	jobArgs := []string{"--quiet", "--no-color"}
	if configFile != "" {
		jobArgs = append(jobArgs, "--config", cfgPath)
	}
	if scheduleExceptions {
		jobArgs = append(jobArgs, "--exceptions")
	}

	job := schedule.Job{
		Expression: expr,
		Command:    schedule.BuildCommand(exe, jobArgs...),
	}

	registrar := schedule.NewRegistrar(schedule.NewCrontabRunner())
	if err := registrar.Install(context.Background(), job); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cfg.Schedule.Expression = expr
	cfg.Schedule.Exceptions = scheduleExceptions
	if err := cfg.SaveTo(cfgPath); err != nil {
		logger.Warn("schedule installed but config not saved: %v", err)
	}

	output.PrintSuccess("Scheduled: %s", job.Line())
	logger.Record(logger.LevelInfo, "scheduled job installed: %s", job.Line())
}

func runScheduleShow(cmd *cobra.Command, args []string) {
	registrar := schedule.NewRegistrar(schedule.NewCrontabRunner())

	job, err := registrar.Show(context.Background())
	if errors.Is(err, schedule.ErrNotScheduled) {
		logger.Info("pip-updater is not scheduled")
		return
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	fmt.Printf("Schedule: %s\n", output.Sprintf(output.Info, "%s", job.Expression))
	fmt.Printf("Command:  %s\n", job.Command)
}

func runScheduleRemove(cmd *cobra.Command, args []string) {
	registrar := schedule.NewRegistrar(schedule.NewCrontabRunner())

	if err := registrar.Remove(context.Background()); err != nil {
		if errors.Is(err, schedule.ErrNotScheduled) {
			logger.Info("pip-updater is not scheduled")
			return
		}
		logger.Error("%v", err)
		os.Exit(1)
	}

	cfg, cfgPath := loadConfig()
	cfg.Schedule.Expression = ""
	cfg.Schedule.Exceptions = false
	if err := cfg.SaveTo(cfgPath); err != nil {
		logger.Warn("schedule removed but config not saved: %v", err)
	}

	output.PrintSuccess("Scheduled job removed")
	logger.Record(logger.LevelInfo, "scheduled job removed")
}

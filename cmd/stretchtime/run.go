package main

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"stretchtime/internal/core/countdown"
	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/reminder"
	"stretchtime/internal/core/schedule"
	"stretchtime/internal/logger"
	"stretchtime/internal/platform"
	"stretchtime/internal/platform/notify"
	"stretchtime/internal/storage"
	"stretchtime/internal/ui/prompt"
	"stretchtime/internal/ui/reminderview"
	"stretchtime/internal/ui/shell"
	"stretchtime/internal/ui/timerview"
	"stretchtime/internal/ui/tray"
	"stretchtime/resources"
)

const (
	appID          = "com.stretchtime.app"
	appTitle       = "StretchTime"
	welcomeMessage = "Welcome to the future of stretching!"
)

type runFlags struct {
	hidden bool
}

func newRunCmd(opts *options) *cobra.Command {
	flags := runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the tray app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.hidden, "hidden", false, "Start in the tray without opening the window")
	return cmd
}

func runApp(opts *options, flags runFlags) error {
	cfg := opts.config

	guard, err := platform.AcquireSingleInstance(platform.DefaultAppName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Info("another instance is running, asked it to come forward")
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	store, err := cfg.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.AppIcon))

	banner := shell.NewBanner(schedule.System, cfg.Notice.Duration)
	defer banner.Close()
	mainShell := shell.New(fyneApp, appTitle, banner)

	backend := notify.NewBackend(platform.DefaultAppName, fyneApp)
	if backend != nil {
		defer backend.Close()
	} else {
		logger.Warn("no desktop notification backend available")
	}
	desktopPlatform := notify.NewDesktop(backend, store, prompt.New(mainShell.Window()))

	timer := countdown.New(cfg.TimerModel(), schedule.System, banner)
	daily := reminder.New(cfg.ReminderModel(), reminder.Deps{
		Store:     store,
		Platform:  desktopPlatform,
		Navigator: mainShell,
		Notices:   banner,
		Scheduler: schedule.System,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timerView := timerview.New(timer, banner)
	reminderView := reminderview.New(ctx, daily, desktopPlatform.Supported())
	mainShell.SetSections(timerView.Content(), reminderView.Content())
	mainShell.OnSectionSelected(func(section string) {
		if section == shell.SectionReminders {
			reminderView.Refresh()
		}
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		bindTray(ctx, desktopApp, fyneApp, mainShell, timer, daily)
	} else {
		logger.Warn("system tray unsupported on this platform")
	}

	guard.OnActivate(mainShell.Show)

	if cfg.Storage.Type != storage.KindMemory {
		watcher, err := storage.NewWatcher(cfg.Storage.Path, storage.DefaultDebounce, daily.Sync)
		if err != nil {
			logger.Warn("storage changes from other processes will not be noticed", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	presence := platform.NewPresenceMonitor(platform.NewIdleProvider(), cfg.Presence.IdleThreshold, daily.Revalidate)
	presence.Start(schedule.System, cfg.Presence.PollInterval)
	defer presence.Stop()

	fyneApp.Lifecycle().SetOnEnteredForeground(daily.Revalidate)

	daily.Start()
	timerView.Bind()
	welcome := schedule.System.After(cfg.Notice.WelcomeDelay, func() {
		banner.Show(welcomeMessage, notice.Info)
	})

	if !flags.hidden {
		mainShell.Show()
	}
	logger.Info("stretchtime started", "version", version)
	fyneApp.Run()

	schedule.Stop(welcome)
	cancel()
	daily.Close()
	timer.Close()
	timerView.Close()
	logger.Info("stretchtime stopped")
	return nil
}

func bindTray(ctx context.Context, desktopApp desktop.App, fyneApp fyne.App, mainShell *shell.Shell, timer *countdown.Timer, daily *reminder.Reminder) {
	trayManager := tray.New(desktopApp, tray.Icons{
		Idle:    resources.MustIcon(resources.AppIcon),
		Running: resources.MustIcon(resources.ActiveIcon),
	}, tray.Callbacks{
		OnOpen: mainShell.Show,
		OnToggleTimer: func() {
			if timer.Snapshot().Phase == countdown.PhaseRunning {
				timer.Pause()
				return
			}
			timer.Start()
		},
		OnResetTimer: timer.Reset,
		OnToggleReminder: func() {
			go func() {
				if err := daily.Toggle(ctx); err != nil {
					logger.Debug("reminder toggle from tray rejected", "error", err)
				}
			}()
		},
		OnQuit: fyneApp.Quit,
	})

	trayManager.SetTimer(timer.Snapshot())
	trayManager.SetReminder(daily.Settings())
	daily.OnChange(func(settings reminder.Settings) {
		fyne.Do(func() { trayManager.SetReminder(settings) })
	})

	events := timer.Subscribe(8)
	go func() {
		for event := range events {
			snapshot := event.Snapshot
			fyne.Do(func() { trayManager.SetTimer(snapshot) })
		}
	}()
}

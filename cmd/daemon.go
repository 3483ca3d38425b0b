package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/letmecheque/letmecheque/internal/cli"
	"github.com/letmecheque/letmecheque/internal/config"
	"github.com/letmecheque/letmecheque/internal/daemon"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Spending  string    `json:"spending_path"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background forecast daemon with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.CacheDir(), "letmecheque.pid")
	defaultLog := filepath.Join(pipeline.CacheDir(), "letmecheque.log")
	defaults := config.DefaultConfig().Daemon

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", defaults.Addr, "HTTP listen address (default: config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", time.Duration(defaults.IntervalSec)*time.Second, "Dataset polling interval (default: config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", defaults.EventsBuffer, "Max in-memory events retained (default: config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDaemonConfig(cmd, cfg.Daemon)

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground(cfg)
}

// applyDaemonConfig fills daemon flags the user did not set from the config file.
func applyDaemonConfig(cmd *cobra.Command, d config.DaemonConfig) {
	flags := cmd.Flags()
	if !flags.Changed("addr") && d.Addr != "" {
		flagDaemonAddr = d.Addr
	}
	if !flags.Changed("interval") && d.IntervalSec > 0 {
		flagDaemonInterval = time.Duration(d.IntervalSec) * time.Second
	}
	if !flags.Changed("events-buffer") && d.EventsBuffer > 0 {
		flagDaemonEventsBuffer = d.EventsBuffer
	}
}

func startDaemonDetached() error {
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	for _, dir := range []string{filepath.Dir(flagDaemonPIDFile), filepath.Dir(flagDaemonLogFile)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create daemon directory: %w", err)
		}
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	args := append(withoutDetach(os.Args[1:]), "--child")
	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title: "Daemon started",
		Rows: [][]string{
			{"PID", strconv.Itoa(child.Process.Pid)},
			{"PID file", flagDaemonPIDFile},
			{"API", "http://" + flagDaemonAddr + "/v1/status"},
			{"Log", flagDaemonLogFile},
		},
	}))
	return nil
}

func runDaemonForeground(cfg config.Config) error {
	pf := pidFile(flagDaemonPIDFile)
	src := sourcesFor(cfg)
	if err := pf.claim(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		StartedAt: time.Now(),
		Spending:  src.SpendingPath,
	}); err != nil {
		return err
	}
	defer pf.release()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	svc := daemon.New(daemon.Config{
		Sources:       src,
		UseCache:      !cfg.General.NoCache,
		CachePath:     pipeline.CachePath(),
		Interval:      flagDaemonInterval,
		Addr:          flagDaemonAddr,
		EventsBuffer:  flagDaemonEventsBuffer,
		SessionTTL:    time.Duration(cfg.Daemon.SessionTTLMin) * time.Minute,
		Policy:        forecastPolicy(cfg),
		Threshold:     cfg.Risk.ThresholdPercent,
		WeeklyDefault: cfg.Risk.WeeklyDefault,
		Locations:     cfg.Locations.Known,
		HighSpend:     cfg.Locations.HighSpend,
	}, logger)

	logger.Info("daemon starting",
		zap.String("addr", flagDaemonAddr),
		zap.Duration("interval", flagDaemonInterval),
		zap.String("spending", src.SpendingPath),
		zap.String("pid_file", flagDaemonPIDFile))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.read()
	switch {
	case err != nil:
		fmt.Println(cli.RenderPrompt("Daemon is not running"))
		return nil
	case !processAlive(pid):
		fmt.Println(cli.RenderPrompt(fmt.Sprintf("Stale pid file: pid %d is not alive", pid)))
		return nil
	}

	addr := flagDaemonAddr
	if st, err := pf.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	rows := [][]string{{"PID", strconv.Itoa(pid)}, {"Address", "http://" + addr}}

	st, err := fetchDaemonStatus(addr)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
		fmt.Print(cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows}))
		return nil
	}

	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = st.LastPollAt.Local().Format(time.RFC3339)
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Last poll", lastPoll},
		[]string{"Poll count", strconv.FormatInt(st.PollCount, 10)},
		[]string{"Spending", st.SpendingPath},
		[]string{"Categories", strconv.Itoa(st.Summary.Categories)},
		[]string{"Records", strconv.Itoa(st.Summary.Records)},
		[]string{"Platforms", strconv.Itoa(st.Summary.Platforms)},
		[]string{"Sessions", strconv.Itoa(st.SessionCount)},
	)
	if st.Summary.SpendingError != "" {
		rows = append(rows, []string{"Spending error", st.Summary.SpendingError})
	}
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", st.LastError})
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Daemon", Rows: rows}))
	return nil
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.read()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-ticker.C:
			if !processAlive(pid) {
				pf.release()
				fmt.Printf("  Stopped daemon (pid %d)\n", pid)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
		}
	}
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return out
}

// pidFile is the daemon's pid file path. Runtime state is kept next to it
// with a .json suffix.
type pidFile string

func (p pidFile) statePath() string { return string(p) + ".json" }

// ensureFree fails when a live daemon owns the pid file and clears stale files.
func (p pidFile) ensureFree() error {
	pid, err := p.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.release()
	return nil
}

// claim writes the pid and state files for the current process.
func (p pidFile) claim(st daemonRuntimeState) error {
	if err := p.ensureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(string(p)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	_ = os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
	return nil
}

func (p pidFile) release() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.statePath())
}

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", string(p))
	}
	return pid, nil
}

func (p pidFile) state() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

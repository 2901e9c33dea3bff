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

	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/server"

	"github.com/spf13/cobra"
)

type serveRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
	RecordKey string    `json:"record_key"`
}

var (
	flagServeAddr    string
	flagServeDetach  bool
	flagServePIDFile string
	flagServeLogFile string
	flagServeChild   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio over HTTP with a live event stream",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	Args:  cobra.NoArgs,
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	Args:  cobra.NoArgs,
	RunE:  runServeStop,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", "", "PID file path (default <data-dir>/allot.pid)")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", "", "Log file for detached mode (default <data-dir>/allot-serve.log)")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func serveAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return cfg.Server.Addr
}

func pidFile() string {
	if flagServePIDFile != "" {
		return flagServePIDFile
	}
	return filepath.Join(config.DataDir(cfg), "allot.pid")
}

func serveLogFile() string {
	if flagServeLogFile != "" {
		return flagServeLogFile
	}
	return filepath.Join(config.DataDir(cfg), "allot-serve.log")
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid serve launch mode")
	}
	if flagServeDetach {
		return startServeDetached()
	}
	return runServeForeground()
}

func startServeDetached() error {
	pidPath := pidFile()
	if err := ensureNotRunning(pidPath); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	logPath := serveLogFile()
	if err := os.MkdirAll(filepath.Dir(pidPath), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  API: http://%s/v1/portfolio\n", serveAddr())
	fmt.Printf("  Log: %s\n", logPath)
	return nil
}

func runServeForeground() error {
	pidPath := pidFile()
	if err := ensureNotRunning(pidPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pidPath), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(pidPath, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(pidPath) }()

	dataDir := config.DataDir(cfg)
	state := serveRuntimeState{
		PID:       pid,
		Addr:      serveAddr(),
		StartedAt: time.Now(),
		DataDir:   dataDir,
		RecordKey: cfg.General.RecordKey,
	}
	if err := writeState(statePath(pidPath), state); err != nil {
		log.Warn().Err(err).Msg("writing runtime state")
	}
	defer func() { _ = os.Remove(statePath(pidPath)) }()

	sess, st, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	defer sess.Close()

	srv := server.New(sess, server.Config{
		Addr:         serveAddr(),
		EventsBuffer: cfg.Server.EventsBuffer,
		DataDir:      dataDir,
		Store:        cfg.General.Store,
		Log:          log,
	})

	fmt.Printf("  allot listening on http://%s\n", serveAddr())
	fmt.Printf("  Portfolio %q in %s (%s)\n", cfg.General.RecordKey, dataDir, cfg.General.Store)
	fmt.Printf("  Stop with: allot serve stop --pid-file %s\n", pidPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	pidPath := pidFile()
	pid, err := readPID(pidPath)
	if err != nil {
		fmt.Println("  Server: not running (pid file not found)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := serveAddr()
	if st, err := readState(statePath(pidPath)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Store: %s (%s)\n", st.Store, st.DataDir)
	fmt.Printf("  Items: %d\n", st.Items)
	fmt.Printf("  Last event: #%d (%d buffered)\n", st.LastSeq, st.EventCount)
	fmt.Printf("  Stream subscribers: %d\n", st.SubscriberCount)
	if st.LastPersistError != "" {
		fmt.Printf("  Last save error: %s\n", st.LastPersistError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pidPath := pidFile()
	pid, err := readPID(pidPath)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(pidPath)
			_ = os.Remove(statePath(pidPath))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureNotRunning(pidPath string) error {
	pid, err := readPID(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidPath)
	_ = os.Remove(statePath(pidPath))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidPath string) string {
	return pidPath + ".json"
}

func writeState(path string, st serveRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serveRuntimeState, error) {
	var st serveRuntimeState
	//nolint:gosec // state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}

package server

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// BuildStartupArgs constructs the argument list for the dedicated
// server binary: filesystem paths, network bind, mod selection, and one
// ordered +exec per configured startup config. Startup configs with
// disallowed characters are logged and skipped.
func (m *Manager) BuildStartupArgs() []string {
	args := []string{
		filepath.Join(m.serverPath, "etlded"),
		"+set fs_homepath " + m.serverPath,
		"+set fs_basepath " + m.serverPath,
		"+set net_ip " + m.state.ServerIP,
		"+set net_port " + strconv.Itoa(m.state.ServerPort),
		"+set fs_game " + m.state.ServerMod,
		"+set dedicated 2",
	}
	for _, conf := range m.state.StartupConfigs {
		if !configNameRe.MatchString(conf) {
			m.log.Error("Invalid startup config name, skipping", "config", conf)
			continue
		}
		args = append(args, "+exec "+conf)
	}
	return args
}

// StartupCommand returns the full startup command line, as used in the
// generated systemd unit.
func (m *Manager) StartupCommand() string {
	return strings.Join(m.BuildStartupArgs(), " ")
}

// Run launches the game server as a child process and blocks until it
// exits. Launch failures are logged, never propagated as a crash of
// the tool itself.
func (m *Manager) Run() {
	m.log.Info("Starting server", "server", m.Name)

	// The +set tokens carry embedded spaces the engine expects to
	// receive as single arguments, so run through the shell the same
	// way the systemd unit does.
	cmdline := m.StartupCommand()
	m.log.Debug("Startup command", "cmd", cmdline)

	cmd := exec.Command("/bin/sh", "-c", cmdline)
	cmd.Dir = m.serverPath
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		m.log.Error("Server process failed", "error", err)
	}
}

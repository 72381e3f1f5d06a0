package supervisor

import "path/filepath"

// State directory layout (spec.md §6, unchanged): queue.db, config.json,
// worker.pid, plus the added stop.flag sentinel.

// PidPath returns the path of the supervisor's pidfile within stateDir.
func PidPath(stateDir string) string {
	return filepath.Join(stateDir, "worker.pid")
}

// StopFlagPath returns the path of the stop-flag sentinel within stateDir.
func StopFlagPath(stateDir string) string {
	return filepath.Join(stateDir, "stop.flag")
}

// DBPath returns the path of the SQLite database within stateDir.
func DBPath(stateDir string) string {
	return filepath.Join(stateDir, "queue.db")
}

// ConfigPath returns the path of the config file within stateDir.
func ConfigPath(stateDir string) string {
	return filepath.Join(stateDir, "config.json")
}

package supervisor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/shirou/gopsutil/v4/process"
)

func readPid(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

func writePid(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

// IsRunning reports whether a supervisor is currently alive for stateDir,
// by reading its pidfile and probing the PID with gopsutil. A missing
// pidfile is reported as not-running with no error.
func IsRunning(stateDir string) (bool, int, error) {
	pid, err := readPid(PidPath(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false, pid, err
	}
	return alive, pid, nil
}

// acquirePidfile takes an exclusive, race-free lock on path via gofrs/flock.
// If the lock is already held, it reads the stale pidfile's PID and probes
// liveness with gopsutil so the caller gets ErrAlreadyRunning with the
// offending PID rather than a bare "resource busy".
func acquirePidfile(path string) (*flock.Flock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock pidfile: %w", err)
	}
	if !locked {
		if pid, perr := readPid(path); perr == nil {
			if alive, _ := process.PidExists(int32(pid)); alive {
				return nil, fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
			}
		}
		return nil, fmt.Errorf("%w: pidfile is locked by another process", ErrAlreadyRunning)
	}
	return fl, nil
}

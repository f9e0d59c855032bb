package httpserver

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// processRSS returns the resident set size of the current process in bytes.
func processRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}

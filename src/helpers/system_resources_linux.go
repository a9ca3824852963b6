//go:build linux

package helpers

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// totalSystemMemoryMB reads MemTotal from /proc/meminfo. The kernel reports
// kB regardless of locale.
func totalSystemMemoryMB() int {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

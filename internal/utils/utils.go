package utils

import (
	"os"
	"runtime"
)

// IsLinux checks if the current system is Linux
func IsLinux() bool {
	return runtime.GOOS == "linux"
}

// IsWindows checks if the current system is Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// IsDarwin checks if the current system is macOS
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// IsFileExists checks if a regular file exists at path
func IsFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

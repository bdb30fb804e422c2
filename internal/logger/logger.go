package logger

import (
	"fmt"
	"time"
)

// ANSI color codes for console output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func line(color, level, tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %-10s %s\n",
		colorGray, timestamp(), colorReset,
		color, level, colorReset,
		tag, msg)
}

// Info prints an informational message with a component tag.
func Info(tag, msg string) {
	line(colorCyan, "INFO", tag, msg)
}

// Success prints a success message with a component tag.
func Success(tag, msg string) {
	line(colorGreen, " OK ", tag, msg)
}

// Warn prints a warning message with a component tag.
func Warn(tag, msg string) {
	line(colorYellow, "WARN", tag, msg)
}

// Error prints an error message with a component tag.
func Error(tag, msg string) {
	line(colorRed, "FAIL", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s", colorCyan)
	fmt.Println("  ┌─────────────────────────────────┐")
	fmt.Printf("  │  eve-tradehub  %-16s │\n", version)
	fmt.Println("  └─────────────────────────────────┘")
	fmt.Printf("%s", colorReset)
}

// Section prints a section divider used to group startup output.
func Section(name string) {
	fmt.Printf("%s── %s %s\n", colorGray, name, colorReset)
}

// Stats prints a key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("%s%s:%s %v\n", colorGray, key, colorReset, value)
}

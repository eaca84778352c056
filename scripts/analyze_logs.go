package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors        int
	ClaimsIssued       int
	ClaimsIneligible   int
	Redemptions        int
	RedemptionFailures int
	CodeCollisions     int
	ForgedPayloads     int
	SignatureRejects   int
	CascadesCompleted  int
	CascadeFailures    int
	ErrorPatterns      map[string]int
}

func main() {
	// Get today's date for log file names
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	stats := &LogStats{
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	printReport(stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "Redemption failed") {
			stats.RedemptionFailures++
		}
		if strings.Contains(line, "QR payload mismatch") {
			stats.ForgedPayloads++
		}
		if strings.Contains(line, "signature mismatch") {
			stats.SignatureRejects++
		}
		if strings.Contains(line, "Referral cascade failed") {
			stats.CascadeFailures++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Issued entitlement") {
			stats.ClaimsIssued++
		}
		if strings.Contains(line, "Redeemed entitlement") {
			stats.Redemptions++
		}
		if strings.Contains(line, "Code collision on") {
			stats.CodeCollisions++
		}
		if strings.Contains(line, "Referral") && strings.Contains(line, "completed") {
			stats.CascadesCompleted++
		}
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// Extract the main error message
	parts := strings.Split(line, ":")
	if len(parts) > 1 {
		errorMsg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[errorMsg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Coupon Activity:")
	fmt.Printf("   Entitlements Issued: %d\n", stats.ClaimsIssued)
	fmt.Printf("   Redemptions: %d\n", stats.Redemptions)
	fmt.Printf("   Failed Redemptions: %d\n", stats.RedemptionFailures)
	fmt.Printf("   Code Collisions (retried): %d\n", stats.CodeCollisions)

	fmt.Println("\n2. Security Incidents:")
	fmt.Printf("   Forged QR Payloads: %d\n", stats.ForgedPayloads)
	fmt.Printf("   Signature Rejections: %d\n", stats.SignatureRejects)

	fmt.Println("\n3. Referrals:")
	fmt.Printf("   Cascades Completed: %d\n", stats.CascadesCompleted)
	fmt.Printf("   Cascade Failures: %d\n", stats.CascadeFailures)

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n5. Most Common Errors:")
	printTopErrors(stats.ErrorPatterns, 5)
}

func printTopErrors(errors map[string]int, limit int) {
	type errorCount struct {
		message string
		count   int
	}

	var counts []errorCount
	for message, count := range errors {
		counts = append(counts, errorCount{message, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	for _, ec := range counts {
		fmt.Printf("   %dx %s\n", ec.count, ec.message)
	}
}

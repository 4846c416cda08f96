package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"fizzworks/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptConfirm(label string) (bool, error) {
	fmt.Printf("%s (y/N): ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return false, err
	}
	text = strings.ToLower(strings.TrimSpace(text))
	return text == "y" || text == "yes", nil
}

func renderStatus(s game.StateView) {
	accent.Printf("\n== FIZZWORKS PLANT (Day %d, %02d:00, Month %d) ==\n", s.Day, s.Hour, s.Month)
	fmt.Printf("Cash:          %s\n", colorizeMoney(s.CashMicros))
	fmt.Printf("Fixed cost:    %s/h\n", money(s.FixedCostMicrosPerHour))
	fmt.Printf("Capacity:      %s bottles/h (effective %s)\n", comma(s.CapacityPerHour), comma(s.EffectiveCapacity))
	fmt.Printf("Storage:       %s per material\n", comma(s.StorageCapacity))
	fmt.Printf("Brand power:   %.2f   Demand mod: %.2f   Cost mod: %.2f\n", s.BrandPower, s.DemandModifier, s.CostModifier)
	fmt.Printf("Auto-buy:      %t\n", s.AutoBuy)

	fmt.Println()
	accent.Println("Inventory")
	fmt.Printf("%-12s %10s\n", "MATERIAL", "STOCK")
	fmt.Printf("%-12s %10s\n", "preforms", comma(s.Inventory.Preforms))
	fmt.Printf("%-12s %10s\n", "labels", comma(s.Inventory.Labels))
	fmt.Printf("%-12s %10s\n", "packaging", comma(s.Inventory.Packaging))
	fmt.Printf("%-12s %10s\n", "bottles", comma(s.Inventory.Bottles))

	fmt.Println()
	accent.Println("Last Hour")
	fmt.Printf("Produced: %s   Sold: %s   Revenue: %s   Share: %.1f%%\n",
		comma(s.LastProduced), comma(s.LastSold), money(s.LastRevenueMicros), s.LastMarketShare*100)

	fmt.Println()
	accent.Println("Lifetime")
	fmt.Printf("Produced: %s   Sold: %s   Revenue: %s   Expenses: %s\n",
		comma(s.Stats.Produced), comma(s.Stats.Sold), money(s.Stats.RevenueMicros), money(s.Stats.ExpensesMicros))

	if s.Event != nil {
		fmt.Println()
		warn.Printf("EVENT: %s (%dh left)\n", s.Event.Name, s.Event.RemainingHours)
	}
	if s.Mission.ActiveID != "" {
		fmt.Println()
		fmt.Printf("Mission: %s (%dh left)\n", s.Mission.ActiveName, s.Mission.RemainingHours)
	}
	if s.Mission.Pending != nil {
		printSuccess("Mission reward ready. Run `fizz mission claim`.")
	}
	if len(s.UnlockedAchievements) > 0 {
		fmt.Println()
		fmt.Printf("Achievements: %s\n", strings.Join(s.UnlockedAchievements, ", "))
	}
	fmt.Println()
}

func renderMarket(m game.MarketView) {
	accent.Println("\n== MARKET ==")
	fmt.Printf("Demand level:  %s\n", comma(int64(m.DemandLevel)))
	fmt.Printf("Market share:  %.1f%%\n", m.MarketShare*100)
	rivals := "dormant"
	if m.RivalsActive {
		rivals = "active"
	}
	fmt.Printf("Rivals:        %s\n", rivals)

	fmt.Println()
	accent.Println("Channels")
	fmt.Printf("%-14s %10s %8s\n", "CHANNEL", "DEMAND", "SHARE")
	for _, ch := range m.Channels {
		fmt.Printf("%-14s %10s %7.1f%%\n", ch.ChannelID, comma(int64(ch.Demand)), ch.PlayerShare*100)
	}

	if len(m.Rivals) > 0 {
		fmt.Println()
		accent.Println("Rivals")
		for _, r := range m.Rivals {
			fmt.Printf("%-12s (brand %.2f)", r.Name, r.BrandPower)
			channels := make([]string, 0, len(r.ChannelPrices))
			for ch := range r.ChannelPrices {
				channels = append(channels, ch)
			}
			sort.Strings(channels)
			for _, ch := range channels {
				fmt.Printf("  %s=%s", ch, money(r.ChannelPrices[ch]))
			}
			fmt.Println()
		}
	}
	fmt.Println()
}

func renderJournal(entries []game.JournalEntry) {
	accent.Println("\n== PLANT JOURNAL ==")
	if len(entries) == 0 {
		printInfo("Nothing logged yet.")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("[d%d %02d:00] %s", e.Day, e.Hour, e.Message)
		switch e.Severity {
		case game.SeverityGood:
			success.Println(line)
		case game.SeverityBad:
			danger.Println(line)
		default:
			fmt.Println(line)
		}
	}
	fmt.Println()
}

func renderFlavors(s game.StateView) {
	accent.Println("\n== FLAVORS ==")
	fmt.Printf("%-10s %-16s %-8s %-8s %10s %12s %12s\n", "ID", "NAME", "STATUS", "ACTIVE", "PRICE", "PRODUCED", "SOLD")
	for _, f := range s.Flavors {
		status := "locked"
		if f.Unlocked {
			status = "open"
		}
		active := ""
		if f.Active {
			active = "*"
		}
		fmt.Printf("%-10s %-16s %-8s %-8s %10s %12s %12s\n",
			f.ID, f.Name, status, active, money(f.PriceMicros), comma(f.ProducedLifetime), comma(f.SoldLifetime))
	}
	fmt.Println()
}

func renderPrestige(s game.StateView) {
	accent.Println("\n== BRAND LEGACY ==")
	fmt.Printf("Legacy points:     %.2f\n", s.LegacyPoints)
	fmt.Printf("Available points:  %d\n", s.AvailablePoints)
	fmt.Printf("Relaunches:        %d\n", s.Resets)
	fmt.Printf("Lifetime revenue:  %s\n", money(s.Stats.RevenueMicros))
	if s.PrestigeEligible {
		printSuccess("Eligible to relaunch the brand. Run `fizz prestige reset`.")
	} else {
		printInfo("Not yet eligible to relaunch.")
	}
	if len(s.PrestigeNodes) > 0 {
		fmt.Printf("Owned nodes: %s\n", strings.Join(s.PrestigeNodes, ", "))
	}
	fmt.Println()
}

func dollarsToMicros(dollars float64) int64 {
	return int64(dollars*float64(game.MicrosPerDollar) + 0.5)
}

func money(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / game.MicrosPerDollar
	frac := (v % game.MicrosPerDollar) / 10_000
	return fmt.Sprintf("%s$%s.%02d", sign, comma(whole), frac)
}

func colorizeMoney(v int64) string {
	text := money(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		b.WriteByte(',')
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

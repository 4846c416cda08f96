package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "fizzworks/internal/cli"
	"fizzworks/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadClientFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "fizz",
		Short:        "FizzWorks bottling-empire client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "fizzworks server base URL")

	root.AddCommand(
		newStatusCmd(&apiBase),
		newMarketCmd(&apiBase),
		newJournalCmd(&apiBase),
		newBuyCmd(&apiBase),
		newPriceCmd(&apiBase),
		newFlavorCmd(&apiBase),
		newFormatCmd(&apiBase),
		newUpgradeCmd(&apiBase),
		newEquipmentCmd(&apiBase),
		newMissionCmd(&apiBase),
		newPrestigeCmd(&apiBase),
		newResetCmd(&apiBase),
		newPlayCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the plant dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			state, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			renderStatus(state)
			return nil
		},
	}
}

func newMarketCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show demand, market share and rival prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			market, err := newClient(apiBase).Market(ctx)
			if err != nil {
				return err
			}
			renderMarket(market)
			return nil
		},
	}
}

func newJournalCmd(apiBase *string) *cobra.Command {
	limit := 20
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent plant log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			entries, err := newClient(apiBase).Journal(ctx, limit)
			if err != nil {
				return err
			}
			renderJournal(entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <preforms|labels|packaging> <quantity>",
		Short: "Buy raw materials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			res, err := newClient(apiBase).BuySupplies(ctx, args[0], quantity)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought %d %s. Cash: %s", quantity, args[0], money(res.State.CashMicros)))
			return nil
		},
	}
}

func newPriceCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "price <dollars>",
		Short: "Set the active flavor's price per bottle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dollars, err := strconv.ParseFloat(args[0], 64)
			if err != nil || dollars <= 0 {
				return fmt.Errorf("invalid price %q", args[0])
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			res, err := newClient(apiBase).SetPrice(ctx, dollarsToMicros(dollars))
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Price set to %s for %s.", money(dollarsToMicros(dollars)), res.State.ActiveFlavorID))
			return nil
		},
	}
}

func newFlavorCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "flavor [id]",
		Short: "List flavors or switch the active one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			client := newClient(apiBase)
			if len(args) == 0 {
				state, err := client.State(ctx)
				if err != nil {
					return err
				}
				renderFlavors(state)
				return nil
			}
			if _, err := client.ActivateFlavor(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Active flavor: " + args[0])
			return nil
		},
	}
}

func newFormatCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "format <small_500|medium_1000|family_1500>",
		Short: "Switch the bottle format on the line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if _, err := newClient(apiBase).ActivateFormat(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Bottle format: " + args[0])
			return nil
		},
	}
}

func newUpgradeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <id>",
		Short: "Purchase a plant upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			res, err := newClient(apiBase).BuyUpgrade(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Upgrade %s purchased. Cash: %s", args[0], money(res.State.CashMicros)))
			return nil
		},
	}
}

func newEquipmentCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "equipment <id>",
		Short: "Install a piece of equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callCtx(cmd)
			defer cancel()
			res, err := newClient(apiBase).BuyEquipment(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Equipment %s installed. Cash: %s", args[0], money(res.State.CashMicros)))
			return nil
		},
	}
}

func newMissionCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Start side missions and claim rewards",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start <id>",
			Short: "Start a mission (consumes bottles upfront)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := callCtx(cmd)
				defer cancel()
				if _, err := newClient(apiBase).StartMission(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Mission started: " + args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "claim",
			Short: "Claim a completed mission's reward",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := callCtx(cmd)
				defer cancel()
				res, err := newClient(apiBase).ClaimMission(ctx)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Reward claimed. Cash: %s, Legacy: %.2f",
					money(res.State.CashMicros), res.State.LegacyPoints))
				return nil
			},
		},
	)
	return cmd
}

func newPrestigeCmd(apiBase *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prestige",
		Short: "Brand legacy: status, node purchases, relaunch",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show legacy points and reset eligibility",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := callCtx(cmd)
				defer cancel()
				state, err := newClient(apiBase).State(ctx)
				if err != nil {
					return err
				}
				renderPrestige(state)
				return nil
			},
		},
		&cobra.Command{
			Use:   "node <id>",
			Short: "Spend legacy points on a permanent node",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := callCtx(cmd)
				defer cancel()
				if _, err := newClient(apiBase).BuyPrestigeNode(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Legacy node unlocked: " + args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Relaunch the brand (soft reset, keeps legacy)",
			RunE: func(cmd *cobra.Command, args []string) error {
				confirmed, err := promptConfirm("Relaunch the brand? Current run progress resets")
				if err != nil {
					return err
				}
				if !confirmed {
					printWarn("Cancelled.")
					return nil
				}
				ctx, cancel := callCtx(cmd)
				defer cancel()
				res, err := newClient(apiBase).PrestigeReset(ctx)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Brand relaunched. Legacy: %.2f, starting cash: %s",
					res.State.LegacyPoints, money(res.State.CashMicros)))
				return nil
			},
		},
	)
	return cmd
}

func newResetCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Hard reset: wipe the save and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, err := promptConfirm("Wipe ALL progress including legacy")
			if err != nil {
				return err
			}
			if !confirmed {
				printWarn("Cancelled.")
				return nil
			}
			ctx, cancel := callCtx(cmd)
			defer cancel()
			if _, err := newClient(apiBase).HardReset(ctx); err != nil {
				return err
			}
			printSuccess("New game started.")
			return nil
		},
	}
}

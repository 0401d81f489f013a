package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"stakeLedger/internal/config"
	"stakeLedger/internal/report"
)

func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print ledger entities",
	}

	poolCmd := &cobra.Command{
		Use:   "pool <id>",
		Short: "Print a pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectPool,
	}
	userCmd := &cobra.Command{
		Use:   "user <address> <poolId>",
		Short: "Print a user's position in a pool",
		Args:  cobra.ExactArgs(2),
		RunE:  runInspectUser,
	}
	userCmd.Flags().String("deposit-pool", "", "deposit-pool contract the user is scoped to (deposit-pool family)")

	for _, c := range []*cobra.Command{poolCmd, userCmd} {
		c.Flags().String("family", "distribution", "contract family (distribution, deposit-pool)")
		addStoreFlags(c)
		inspectCmd.AddCommand(c)
	}
	return inspectCmd
}

func runInspectPool(cmd *cobra.Command, args []string) error {
	poolID, err := parsePoolID(args[0])
	if err != nil {
		return err
	}
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := report.Pool(ctx, st.kv, poolID)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), out)
}

func runInspectUser(cmd *cobra.Command, args []string) error {
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid address: %s", args[0])
	}
	user := common.HexToAddress(args[0])
	poolID, err := parsePoolID(args[1])
	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	var depositPool common.Address
	if cfg.DepositPool != "" {
		if !common.IsHexAddress(cfg.DepositPool) {
			return fmt.Errorf("invalid deposit pool: %s", cfg.DepositPool)
		}
		depositPool = common.HexToAddress(cfg.DepositPool)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := report.Position(ctx, st.kv, cfg.Family, user, poolID, depositPool)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), out)
}

func parsePoolID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 0)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid pool id: %s", s)
	}
	return id, nil
}

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rootnegativeone/tightbeam/broadcast"
	"github.com/rootnegativeone/tightbeam/cmd"
	"github.com/rootnegativeone/tightbeam/payload"
	"github.com/spf13/cobra"
)

var (
	sendBlockSize  int
	sendRedundancy int
	sendIntegrity  bool
	sendSeed       int64
)

func init() {
	sendCmd := &cobra.Command{
		Use:   "send [file]",
		Short: "encode a payload into a frame schedule on stdout",
		Long:  "encode a payload into a frame schedule on stdout. Without a file the builtin demo payload is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSend,
	}
	sendCmd.Flags().IntVar(&sendBlockSize, "block-size", broadcast.DefaultBlockSize, "source block size in bytes")
	sendCmd.Flags().IntVar(&sendRedundancy, "redundancy", broadcast.DefaultRedundancy, "extra coded symbols beyond k")
	sendCmd.Flags().BoolVar(&sendIntegrity, "integrity", true, "append a CRC-32 tag to each symbol")
	sendCmd.Flags().Int64Var(&sendSeed, "seed", broadcast.DefaultSeed, "encoder PRNG seed")

	cmd.CMD.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	logger := slog.Default().With("subsystem", "send")

	var data []byte
	if len(args) == 1 {
		var err error
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
	} else {
		data = payload.POSTerminalLogs()
	}

	b, err := broadcast.Prepare(data, broadcast.Options{
		BlockSize:      sendBlockSize,
		Redundancy:     sendRedundancy,
		IntegrityCheck: sendIntegrity,
		Seed:           sendSeed,
	})
	if err != nil {
		return err
	}

	for _, f := range b.Frames {
		fmt.Println(f.Encode())
	}

	logger.Info("broadcast prepared",
		"id", b.ID,
		"bytes", len(data),
		"k", b.Metadata.K,
		"frames", len(b.Frames),
		"systematic", b.SystematicCount,
		"redundant", b.RedundantCount,
	)
	return nil
}

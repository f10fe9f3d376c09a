package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/fatih/color"
	"github.com/rootnegativeone/tightbeam/broadcast"
	"github.com/rootnegativeone/tightbeam/cmd"
	"github.com/rootnegativeone/tightbeam/fountain"
	"github.com/rootnegativeone/tightbeam/payload"
	"github.com/rootnegativeone/tightbeam/session"
	"github.com/spf13/cobra"
)

var (
	simChannel    string
	simBlockSize  int
	simRedundancy int
	simIntegrity  bool
	simSeed       int64
	simLossRate   float64
	simBurstLen   int
	simP          float64
	simR          float64
	simGoodLoss   float64
	simBadLoss    float64
)

func init() {
	simCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run sender, lossy channel and receiver in one process",
		RunE:  runSimulate,
	}
	simCmd.Flags().StringVar(&simChannel, "channel", "ge", "erasure model: none, burst or ge")
	simCmd.Flags().IntVar(&simBlockSize, "block-size", broadcast.DefaultBlockSize, "source block size in bytes")
	simCmd.Flags().IntVar(&simRedundancy, "redundancy", broadcast.DefaultRedundancy, "extra coded symbols beyond k")
	simCmd.Flags().BoolVar(&simIntegrity, "integrity", true, "append CRC-32 tags")
	simCmd.Flags().Int64Var(&simSeed, "seed", broadcast.DefaultSeed, "PRNG seed for encoder and channel")
	simCmd.Flags().Float64Var(&simLossRate, "loss-rate", 0.2, "burst: probability a burst starts")
	simCmd.Flags().IntVar(&simBurstLen, "burst-len", 3, "burst: maximum burst length")
	simCmd.Flags().Float64Var(&simP, "p", 0.05, "ge: good to bad transition probability")
	simCmd.Flags().Float64Var(&simR, "r", 0.25, "ge: bad to good transition probability")
	simCmd.Flags().Float64Var(&simGoodLoss, "good-loss", 0.0, "ge: loss probability in the good state")
	simCmd.Flags().Float64Var(&simBadLoss, "bad-loss", 0.8, "ge: loss probability in the bad state")

	cmd.CMD.AddCommand(simCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := slog.Default().With("subsystem", "simulate")

	data := payload.POSTerminalLogs()
	b, err := broadcast.Prepare(data, broadcast.Options{
		BlockSize:      simBlockSize,
		Redundancy:     simRedundancy,
		IntegrityCheck: simIntegrity,
		Seed:           simSeed,
	})
	if err != nil {
		return err
	}

	// The channel only touches symbol frames; sync and metadata are the
	// receiver's lock-on input and stay out of the symbol-level erasers.
	sent := make([]fountain.Symbol, 0, b.SystematicCount+b.RedundantCount)
	for _, f := range b.SymbolFrames() {
		sent = append(sent, fountain.Symbol{Indices: f.Indices, Payload: f.Payload})
	}

	rng := rand.New(rand.NewSource(simSeed))
	var delivered []fountain.Symbol
	switch simChannel {
	case "none":
		delivered = sent
	case "burst":
		delivered = fountain.BurstEraser(sent, simLossRate, simBurstLen, rng)
	case "ge":
		delivered = fountain.GilbertElliottEraser(sent, simP, simR, simGoodLoss, simBadLoss, fountain.StateGood, rng)
	default:
		return fmt.Errorf("unknown channel %q", simChannel)
	}

	sess, err := session.New(b.Metadata)
	if err != nil {
		return err
	}

	for i, s := range delivered {
		if _, err := sess.AddSymbol(i, s.Indices, hex.EncodeToString(s.Payload)); err != nil {
			return err
		}
	}

	st := sess.Status()
	logger.Info("channel run complete",
		"id", b.ID,
		"sent", len(sent),
		"delivered", len(delivered),
		"coverage", fmt.Sprintf("%.0f%%", st.Coverage*100),
	)

	if !st.DecodeComplete {
		color.New(color.FgRed).Fprintln(os.Stderr, "decode failed: not enough independent symbols survived")
		return fmt.Errorf("decode incomplete: %d of %d symbols delivered", len(delivered), len(sent))
	}

	if string(st.Recovered) != string(data) {
		return fmt.Errorf("recovered payload differs from input")
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "payload recovered: %d bytes from %d of %d symbols\n",
		len(st.Recovered), st.SymbolsObserved, len(sent))
	fmt.Print(string(st.Recovered))
	return nil
}

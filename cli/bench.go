package cli

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/rootnegativeone/tightbeam/cmd"
	"github.com/rootnegativeone/tightbeam/fountain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// benchProfile is one channel configuration of the sweep, loadable from a
// YAML profile file.
type benchProfile struct {
	Name     string  `yaml:"name"`
	Channel  string  `yaml:"channel"`
	LossRate float64 `yaml:"loss_rate"`
	BurstLen int     `yaml:"burst_len"`
	P        float64 `yaml:"p"`
	R        float64 `yaml:"r"`
	GoodLoss float64 `yaml:"good_loss"`
	BadLoss  float64 `yaml:"bad_loss"`
}

var defaultProfiles = []benchProfile{
	{Name: "burst", Channel: "burst", LossRate: 0.2, BurstLen: 3},
	{Name: "ge", Channel: "ge", P: 0.05, R: 0.25, GoodLoss: 0.02, BadLoss: 0.8},
}

var (
	benchPayloadLen int
	benchBlockSize  int
	benchTrials     int
	benchOverheads  []float64
	benchProfiles   string
	benchSeed       int64
)

func init() {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Monte Carlo sweep of the codec across channel profiles",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchPayloadLen, "payload", 16384, "payload bytes per trial")
	benchCmd.Flags().IntVar(&benchBlockSize, "block-size", 32, "source block size in bytes")
	benchCmd.Flags().IntVar(&benchTrials, "trials", 50, "trials per configuration")
	benchCmd.Flags().Float64SliceVar(&benchOverheads, "overheads", []float64{0, 0.1, 0.2, 0.3}, "extra symbols as a fraction of k")
	benchCmd.Flags().StringVar(&benchProfiles, "profiles", "", "YAML file with channel profiles")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "sweep PRNG seed")

	cmd.CMD.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	profiles := defaultProfiles
	if benchProfiles != "" {
		raw, err := os.ReadFile(benchProfiles)
		if err != nil {
			return fmt.Errorf("read profiles: %w", err)
		}
		profiles = nil
		if err := yaml.Unmarshal(raw, &profiles); err != nil {
			return fmt.Errorf("parse profiles: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(benchSeed))

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	tbl := table.New("profile", "overhead", "success", "avg used", "avg decode", "avg degree").
		WithHeaderFormatter(headerFmt)

	fmt.Printf("payload=%dB block=%d trials=%d\n", benchPayloadLen, benchBlockSize, benchTrials)

	for _, profile := range profiles {
		for _, overhead := range benchOverheads {
			successes := 0
			merged := fountain.NewCollector()

			for trial := 0; trial < benchTrials; trial++ {
				ok, collector, err := runTrial(profile, overhead, rng)
				if err != nil {
					return err
				}
				if ok {
					successes++
				}
				merged.Merge(collector)
			}

			summary := merged.Summary()
			tbl.AddRow(
				profile.Name,
				fmt.Sprintf("%.2f", overhead),
				fmt.Sprintf("%5.1f%%", float64(successes)/float64(benchTrials)*100),
				fmt.Sprintf("%.1f", summary.AverageSymbolsUsed),
				summary.AverageDecodeDuration.Round(10*time.Microsecond).String(),
				fmt.Sprintf("%.2f", summary.AverageDegree),
			)
		}
	}

	tbl.Print()
	return nil
}

func runTrial(profile benchProfile, overhead float64, rng *rand.Rand) (bool, *fountain.Collector, error) {
	data := make([]byte, benchPayloadLen)
	rng.Read(data)

	collector := fountain.NewCollector()
	cfg := fountain.DefaultConfig(benchBlockSize)
	cfg.IntegrityCheck = true
	cfg.Seed = rng.Int63()

	enc, err := fountain.NewEncoder(data, cfg, collector)
	if err != nil {
		return false, nil, err
	}
	k := enc.K()

	symbols := enc.EmitSystematic()
	if extra := int(overhead * float64(k)); extra > 0 {
		symbols = append(symbols, enc.Encode(extra)...)
	}

	var received []fountain.Symbol
	switch profile.Channel {
	case "burst":
		received = fountain.BurstEraser(symbols, profile.LossRate, profile.BurstLen, rng)
	case "ge":
		received = fountain.GilbertElliottEraser(symbols, profile.P, profile.R, profile.GoodLoss, profile.BadLoss, fountain.StateGood, rng)
	default:
		return false, nil, fmt.Errorf("profile %q: unknown channel %q", profile.Name, profile.Channel)
	}

	dec, err := fountain.NewDecoder(benchBlockSize, k, len(data), true, collector)
	if err != nil {
		return false, nil, err
	}
	for _, s := range received {
		dec.AddSymbol(s.Indices, s.Payload)
	}

	recovered, ok := dec.Decode()
	return ok && bytes.Equal(recovered, data), collector, nil
}

package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rootnegativeone/tightbeam/cmd"
	"github.com/rootnegativeone/tightbeam/metrics"
	"github.com/rootnegativeone/tightbeam/session"
	"github.com/rootnegativeone/tightbeam/wire"
	"github.com/spf13/cobra"
)

var (
	recvBlockSize   int
	recvK           int
	recvOrigLen     int
	recvIntegrity   bool
	recvMetricsAddr string
)

func init() {
	recvCmd := &cobra.Command{
		Use:   "recv",
		Short: "read frames from stdin and reassemble the payload",
		Long: "read frames from stdin and reassemble the payload. Without --k the session " +
			"locks on from sync or metadata frames in the stream.",
		RunE: runRecv,
	}
	recvCmd.Flags().IntVar(&recvBlockSize, "block-size", 0, "block size from out-of-band metadata")
	recvCmd.Flags().IntVar(&recvK, "k", 0, "source block count from out-of-band metadata")
	recvCmd.Flags().IntVar(&recvOrigLen, "orig-len", 0, "payload length from out-of-band metadata")
	recvCmd.Flags().BoolVar(&recvIntegrity, "integrity", true, "expect CRC-32 tags on symbols")
	recvCmd.Flags().StringVar(&recvMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.CMD.AddCommand(recvCmd)
}

func runRecv(cmd *cobra.Command, args []string) error {
	logger := slog.Default().With("subsystem", "recv")

	var sess *session.Session
	if recvK > 0 {
		var err error
		sess, err = session.New(wire.Metadata{
			BlockSize:      recvBlockSize,
			K:              recvK,
			OrigLen:        recvOrigLen,
			IntegrityCheck: recvIntegrity,
		})
		if err != nil {
			return err
		}
	} else {
		sess = session.NewPending()
	}

	if recvMetricsAddr != "" {
		handler, err := metrics.InitPrometheus()
		if err != nil {
			return err
		}
		if err := metrics.Init(); err != nil {
			return err
		}
		metrics.SetSource(func() metrics.Snapshot {
			st := sess.Status()
			var rejected int64
			for _, n := range st.Metrics.RejectedSymbols {
				rejected += n
			}
			return metrics.Snapshot{
				SymbolsObserved: int64(st.SymbolsObserved),
				UniqueSymbols:   int64(st.UniqueSymbols),
				Coverage:        st.Coverage,
				DecodeAttempts:  st.Metrics.DecodeAttempts,
				DecodeSuccesses: st.Metrics.DecodeSuccesses,
				RejectedSymbols: rejected,
				DecodeComplete:  st.DecodeComplete,
			}
		})

		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		go func() {
			if err := http.ListenAndServe(recvMetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", recvMetricsAddr)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := wire.Parse(line)
		if err != nil {
			logger.Warn("unreadable frame", "error", err)
			continue
		}

		st, err := sess.HandleFrame(frame)
		if err != nil {
			logger.Warn("frame not accepted", "error", err)
			continue
		}

		if st.NewlyAdded {
			logger.Debug("symbol captured",
				"sequence", frame.Sequence,
				"observed", st.SymbolsObserved,
				"coverage", fmt.Sprintf("%.0f%%", st.Coverage*100),
			)
		}

		if st.DecodeComplete {
			color.New(color.FgGreen).Fprintf(os.Stderr, "payload recovered after %d symbols\n", st.SymbolsObserved)
			fmt.Print(string(st.Recovered))
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	st := sess.Status()
	return fmt.Errorf("stream ended before recovery: %d symbols observed, coverage %.0f%%",
		st.SymbolsObserved, st.Coverage*100)
}

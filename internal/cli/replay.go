package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/signal-memory/internal/learning"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Record interactions from newline-delimited JSON on stdin",
		Long:  `Each line is {"userMessage": "...", "aiResponse": "...", "contextRef": {...}, "mode": "..."}.`,
		Run:   runReplay,
	}

	RootCmd.AddCommand(cmd)
}

type replayLine struct {
	UserMessage string          `json:"userMessage"`
	AIResponse  string          `json:"aiResponse"`
	ContextRef  json.RawMessage `json:"contextRef"`
	Mode        string          `json:"mode"`
}

func runReplay(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.close(cmd.Context())

	recorded, skipped := 0, 0
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l replayLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			a.logger.Warn("skipping malformed line", zap.Int("line", line), zap.Error(err))
			skipped++
			continue
		}
		ok := a.controller.RecordInteraction(cmd.Context(), learning.Interaction{
			UserMessage: l.UserMessage,
			AIResponse:  l.AIResponse,
			ContextRef:  l.ContextRef,
			Mode:        l.Mode,
		})
		if !ok {
			skipped++
			continue
		}
		recorded++
	}
	if err := sc.Err(); err != nil {
		exitErr("read stdin", err)
	}

	// Triggers that landed on an in-flight retrain were skipped; wait for
	// the last cycle, then flush patterns learned since.
	a.controller.Wait()
	if err := a.controller.Save(cmd.Context()); err != nil {
		exitErr("save snapshot", err)
	}

	fmt.Printf(`{"ok":true,"recorded":%d,"skipped":%d}`+"\n", recorded, skipped)
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/signal-memory/internal/model"
	"github.com/rcliao/signal-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learner and database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.close(cmd.Context())

	dbStats, err := a.store.Stats(cmd.Context(), a.dbPath)
	if err != nil {
		exitErr("stats", err)
	}

	out := struct {
		Learner model.Stats  `json:"learner"`
		Store   *store.Stats `json:"store"`
	}{a.controller.Stats(), dbStats}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

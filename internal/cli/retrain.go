package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/signal-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Run a retrain cycle now and wait for it",
		Run:   runRetrain,
	}

	RootCmd.AddCommand(cmd)
}

func runRetrain(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.close(cmd.Context())

	done, started := a.controller.Retrain(cmd.Context())
	<-done

	b, _ := json.MarshalIndent(struct {
		Started bool             `json:"started"`
		State   model.ModelState `json:"state"`
	}{started, a.controller.State()}, "", "  ")
	fmt.Println(string(b))
}

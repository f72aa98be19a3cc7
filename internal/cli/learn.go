package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/signal-memory/internal/learning"
)

func init() {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Record a user/assistant exchange",
		Long:  "Record an interaction. Every 50th interaction retrains the model; the command waits for it before exiting.",
		Run:   runLearn,
	}

	cmd.Flags().StringP("user", "u", "", "User message (required)")
	cmd.Flags().StringP("response", "r", "", "Assistant response (required)")
	cmd.Flags().String("context", "", "Opaque JSON context reference")
	cmd.Flags().StringP("mode", "m", "", "Mode tag")

	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("response")

	RootCmd.AddCommand(cmd)
}

func runLearn(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	response, _ := cmd.Flags().GetString("response")
	contextRef, _ := cmd.Flags().GetString("context")
	mode, _ := cmd.Flags().GetString("mode")

	var ref json.RawMessage
	if contextRef = strings.TrimSpace(contextRef); contextRef != "" {
		if !json.Valid([]byte(contextRef)) {
			exitErr("learn", fmt.Errorf("--context must be valid JSON"))
		}
		ref = json.RawMessage(contextRef)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.close(cmd.Context())

	ok := a.controller.RecordInteraction(cmd.Context(), learning.Interaction{
		UserMessage: user,
		AIResponse:  response,
		ContextRef:  ref,
		Mode:        mode,
	})
	a.controller.Wait()
	if err := a.controller.Save(cmd.Context()); err != nil {
		exitErr("save snapshot", err)
	}

	st := a.controller.Stats()
	fmt.Printf(`{"ok":%t,"learningDataPoints":%d,"version":%q}`+"\n", ok, st.LearningDataPoints, st.Version)
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest [message]",
		Short: "Suggest a previously given response for a message",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSuggest,
	}

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	a, err := openApp(cmd.Context())
	if err != nil {
		exitErr("open", err)
	}
	defer a.close(cmd.Context())

	s, ok := a.controller.Suggest(strings.Join(args, " "))

	if formatFlag == "text" {
		if ok {
			fmt.Println(s)
		}
		return
	}

	var out *string
	if ok {
		out = &s
	}
	b, _ := json.Marshal(map[string]*string{"suggestion": out})
	fmt.Println(string(b))
}

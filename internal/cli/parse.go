package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Extract issues and a severity summary from advisory text",
		Long:  "Parse advisory text into enumerated issues with severities plus a line-level severity summary. Text can be a positional arg or piped via stdin.",
		Run:   runParse,
	}

	RootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) {
	text, err := readInput(args)
	if err != nil {
		exitErr("read stdin", err)
	}

	c, err := newClassifier()
	if err != nil {
		exitErr("parse", err)
	}
	result := c.Analyze(text)

	if formatFlag == "text" {
		for _, is := range result.Issues {
			fmt.Printf("[%s] %s\n", is.Severity, is.Title)
		}
		s := result.Summary
		fmt.Printf("high=%d medium=%d low=%d total=%d\n", s.High, s.Medium, s.Low, s.Total)
		return
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

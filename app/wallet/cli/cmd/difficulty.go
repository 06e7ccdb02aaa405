package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var difficultyCmd = &cobra.Command{
	Use:   "difficulty <level>",
	Short: "Set the difficulty for the next block, between 1 and 6.",
	Args:  cobra.ExactArgs(1),
	RunE:  difficultyRun,
}

func init() {
	rootCmd.AddCommand(difficultyCmd)
}

func difficultyRun(cmd *cobra.Command, args []string) error {
	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}

	var resp struct {
		Difficulty uint `json:"difficulty"`
	}
	if err := call(http.MethodPut, fmt.Sprintf("/v1/difficulty/%d", level), nil, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("difficulty set to %d", resp.Difficulty)
	return nil
}

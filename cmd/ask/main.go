package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"talk-qa/internal/di"
	"talk-qa/internal/domain"
	"talk-qa/internal/infra/config"
	"talk-qa/internal/infra/logger"
	"talk-qa/internal/usecase"
)

var (
	modeTag     string
	showContext bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question from the talk corpus",
		Long:  "Runs the full retrieval-to-answer pipeline locally and prints the grounded answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&modeTag, "mode", "", "response mode: general, title_list, or title_speaker (default: auto-detect)")
	rootCmd.Flags().BoolVar(&showContext, "context", false, "also print the retrieved context records")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New()

	components, err := di.NewApplicationComponents(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}
	defer components.Close()

	input := usecase.AnswerQuestionInput{
		Question: strings.Join(args, " "),
	}
	if modeTag != "" {
		mode, ok := domain.ParseMode(modeTag)
		if !ok {
			return fmt.Errorf("unknown mode %q", modeTag)
		}
		input.Mode = &mode
	}

	output, err := components.AnswerUsecase.Execute(cmd.Context(), input)
	if err != nil {
		return err
	}

	fmt.Println(output.Answer)

	if showContext {
		fmt.Println()
		for i, c := range output.Contexts {
			fmt.Printf("[%d] %s (%s) score=%.4f\n", i+1, c.Title, c.TalkID, c.Score)
		}
	}
	return nil
}

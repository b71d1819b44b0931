package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/app"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/repository"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Score the sentiment of a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("text cannot be empty")
			}
			engines, err := app.LoadEngines(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}

			result := engines.Analyzer.Analyze(cmd.Context(), text)
			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if result.Error != "" {
				return fmt.Errorf("sentiment analysis failed: %s", result.Error)
			}
			return nil
		},
	}
}

type summaryOutput struct {
	HotelID   int64  `json:"hotel_id"`
	HotelName string `json:"hotel_name"`
	domain.SummaryResult
}

func newSummarizeCmd(c *cli) *cobra.Command {
	var (
		hotelID   int64
		hotelName string
		maxLength int
		minLength int
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize the stored reviews of one hotel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hotelID == 0 && strings.TrimSpace(hotelName) == "" {
				return errors.New("either --hotel-id or --hotel-name must be provided")
			}
			st, err := app.OpenStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer st.Close()
			repo := repository.New(st)

			var hotel domain.Hotel
			if hotelID != 0 {
				hotel, err = repo.Hotels.GetByID(cmd.Context(), hotelID)
			} else {
				hotel, err = repo.Hotels.FindByName(cmd.Context(), hotelName)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return errors.New("hotel not found")
			}
			if err != nil {
				return err
			}

			reviews, err := repo.Reviews.ListByHotel(cmd.Context(), hotel.ID)
			if err != nil {
				return err
			}
			texts := make([]string, 0, len(reviews))
			for _, r := range reviews {
				texts = append(texts, r.ReviewText)
			}

			engines, err := app.LoadEngines(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			result := engines.Summarizer.Summarize(cmd.Context(), summarize.Request{
				Reviews:   texts,
				MaxLength: maxLength,
				MinLength: minLength,
			})
			return printJSON(cmd, summaryOutput{HotelID: hotel.ID, HotelName: hotel.Name, SummaryResult: result})
		},
	}
	cmd.Flags().Int64Var(&hotelID, "hotel-id", 0, "hotel id")
	cmd.Flags().StringVar(&hotelName, "hotel-name", "", "case-insensitive hotel name substring")
	cmd.Flags().IntVar(&maxLength, "max-length", summarize.DefaultMaxLength, "maximum summary length")
	cmd.Flags().IntVar(&minLength, "min-length", summarize.DefaultMinLength, "minimum summary length")
	cmd.MarkFlagsMutuallyExclusive("hotel-id", "hotel-name")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"errors"
	"fmt"

	"github.com/iwvelando/fincalc/internal/predict"
	"github.com/iwvelando/fincalc/pkg/format"
	"github.com/iwvelando/fincalc/pkg/output"
	"github.com/spf13/cobra"
)

func newPredictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Ask the prediction services about a loan or a plot of land",
	}
	cmd.AddCommand(newPredictLoanCmd(a), newPredictPropertyCmd(a))
	return cmd
}

func newPredictLoanCmd(a *app) *cobra.Command {
	var (
		application predict.LoanApplication
		user        string
	)

	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Predict whether a loan application would be approved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.loanClient()
			if client == nil {
				return errors.New("predictor loanEndpoint is not configured")
			}

			prediction, err := client.Predict(cmd.Context(), application)
			if err != nil {
				return err
			}

			if user != "" {
				recorder, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()
				recorder.Record(user, predict.TypeLoanPrediction, prediction.Description(), prediction.HistoryData(application))
			}

			return output.Fields(cmd.OutOrStdout(), a.format, "Loan Prediction", []output.Field{
				{Label: "Status", Value: prediction.Status()},
				{Label: "Probability", Value: format.Percent(prediction.Probability * 100)},
				{Label: "Message", Value: prediction.Message},
			}, prediction)
		},
	}
	cmd.Flags().Float64Var(&application.LoanAmount, "amount", 0, "loan amount")
	cmd.Flags().Float64Var(&application.InterestRate, "rate", 0, "annual interest rate in percent")
	cmd.Flags().Float64Var(&application.AnnualIncome, "income", 0, "annual income")
	cmd.Flags().Float64Var(&application.DTI, "dti", 0, "debt-to-income ratio in percent")
	cmd.Flags().StringVarP(&user, "user", "u", "", "record the prediction in this user's history")
	for _, name := range []string{"amount", "rate", "income", "dti"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newPredictPropertyCmd(a *app) *cobra.Command {
	var (
		query predict.PropertyQuery
		user  string
	)

	cmd := &cobra.Command{
		Use:   "property",
		Short: "Estimate the future value of a plot of land",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			predictor := a.propertyPredictor(a.assistantClient())
			if predictor == nil {
				return errors.New("assistant apiKey is not configured")
			}

			estimate, err := predictor.Predict(cmd.Context(), query)
			if err != nil {
				return err
			}

			if user != "" {
				recorder, closeHistory, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer closeHistory()
				recorder.Record(user, predict.TypePropertyPrediction, estimate.Description(query.Years), estimate.HistoryData(query))
			}

			return output.Fields(cmd.OutOrStdout(), a.format, "Property Prediction", []output.Field{
				{Label: "Current Value", Value: format.CurrencyPlaces(estimate.CurrentValue, 0)},
				{Label: fmt.Sprintf("Value in %d years", query.Years), Value: format.CurrencyPlaces(estimate.PredictedValue, 0)},
			}, estimate)
		},
	}
	cmd.Flags().Float64Var(&query.Latitude, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&query.Longitude, "lng", 0, "longitude")
	cmd.Flags().Float64Var(&query.Dismil, "dismil", 0, "land size in dismil")
	cmd.Flags().Float64Var(&query.PricePerDismil, "price", 0, "current price per dismil")
	cmd.Flags().IntVar(&query.Years, "years", 0, "years ahead to estimate")
	cmd.Flags().StringVarP(&user, "user", "u", "", "record the estimate in this user's history")
	for _, name := range []string{"lat", "lng", "dismil", "price", "years"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

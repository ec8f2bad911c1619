package assistant

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyQuery is returned for a blank question.
var ErrEmptyQuery = errors.New("query is empty")

const systemPrompt = `You are Lex, a friendly and professional financial calculator assistant. Your ONLY job is to suggest the most appropriate calculator(s) from the provided list based on the user's query.

Your rules are absolute:
1. Strictly recommend calculators ONLY from this list.
2. If a user asks anything unrelated to choosing a calculator (like financial advice, stock prices, or personal questions), you MUST politely decline and steer the conversation back to their calculator needs.
3. Keep your responses concise, clear, and focused.
4. Briefly explain *why* a calculator is a good fit for their query.
5. Use markdown for formatting, especially for lists and bolding key terms.

List of Available Calculators:
- SIP Calculator: For planning systematic investment plans.
- EMI Calculator: For calculating loan installments.
- Lumpsum Calculator: For projecting the future value of a one-time investment.
- Retirement Corpus Calculator: For planning retirement savings.
- Loan Affordability: To determine how much loan a person can afford.
- Sustainable SWP Calculator: For planning systematic withdrawals from investments.
- Rent vs Buy Calculator: Compares renting vs buying a home.
- Monthly Expenses Calculator: To track and calculate monthly spending.
- Fuel Cost Calculator: Calculates fuel cost for a trip.
- Electricity Bill Estimator: Estimates the monthly electricity bill.
- Geo-Property Predictor: Predicts future property value based on location.
- Loan Prediction: Predicts loan approval chances.`

// Message is one prior turn supplied by the caller.
type Message struct {
	Role string `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// Reply is a recommendation. Fallback is set when the keyword-based
// suggestion was used instead of the service.
type Reply struct {
	Text     string `json:"text" yaml:"text"`
	Fallback bool   `json:"fallback" yaml:"fallback"`
}

// Recommend suggests calculators for query given the prior conversation. Any
// service failure is logged and answered with FallbackSuggestion.
func (c *Client) Recommend(ctx context.Context, history []Message, query string) (Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Reply{}, ErrEmptyQuery
	}

	if !c.Enabled() {
		return Reply{Text: FallbackSuggestion(query), Fallback: true}, nil
	}

	contents := make([]Content, 0, len(history)+1)
	for _, m := range history {
		role := RoleUser
		if m.Role == RoleModel || m.Role == "bot" {
			role = RoleModel
		}
		contents = append(contents, Content{Role: role, Parts: []Part{{Text: m.Text}}})
	}
	contents = append(contents, Content{Role: RoleUser, Parts: []Part{{Text: query}}})

	system := &Content{Role: "system", Parts: []Part{{Text: systemPrompt}}}
	text, err := c.Generate(ctx, contents, system)
	if err != nil {
		c.logger.Warn("assistant request failed; using fallback",
			zap.String("op", "assistant.Recommend"),
			zap.Error(err),
		)
		return Reply{Text: FallbackSuggestion(query), Fallback: true}, nil
	}
	return Reply{Text: text}, nil
}

// FallbackSuggestion answers from keywords when the service cannot.
func FallbackSuggestion(query string) string {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "invest") {
		return "It seems I'm having trouble connecting. For investments, you might like the **SIP Calculator** for monthly plans or the **Lumpsum Calculator** for one-time investments."
	}
	if strings.Contains(lower, "loan") || strings.Contains(lower, "emi") {
		return "It seems I'm having trouble connecting. For loans, check out the **EMI Calculator**, **Loan Affordability Calculator**, or our **Loan Prediction** tool."
	}
	return "I'm having connection issues, but here are our most popular calculators:\n\n* **SIP Calculator** - For investments\n* **EMI Calculator** - For loans\n* **Retirement Corpus Calculator** - For retirement planning\n\nWhat type of financial planning interests you most?"
}

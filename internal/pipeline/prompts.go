package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/akashgupta/spendlens/internal/domain"
)

// taxonomy is the fixed category vocabulary offered to the model. Anything
// the model cannot place lands in Uncategorized.
var taxonomy = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Entertainment",
	"Bills & Utilities",
	"Health & Fitness",
	"Education",
	"Travel",
	"Groceries",
	"Rent",
	"Salary",
	"Freelance",
	"Investment",
	"Loan Payment",
	"Uncategorized",
}

// extractionInstruction fixes the output contract for the extractor: a strict
// JSON array, one object per distinct transaction in the input, with the
// documented defaulting policy.
func extractionInstruction(today time.Time) string {
	var sb strings.Builder

	sb.WriteString("You are a financial assistant. The user may describe MULTIPLE transactions in one input " +
		"(e.g., \"100rs to papa and 2000 emi and 400 for shopping\").\n\n")
	sb.WriteString("Parse ALL transactions mentioned and return them as a JSON array. " +
		"Each transaction object must have exactly these fields:\n")
	sb.WriteString("{\n" +
		"  \"description\": \"string (what the transaction is)\",\n" +
		"  \"amount\": number (amount in rupees),\n" +
		"  \"type\": \"income\" or \"expense\",\n" +
		"  \"category_name\": \"string (one of the categories below)\",\n" +
		"  \"payment_mode\": \"cash\" or \"card\" or \"upi\" or \"bank_transfer\",\n" +
		"  \"date\": \"YYYY-MM-DD\",\n" +
		"  \"notes\": \"string (optional additional info)\"\n" +
		"}\n\n")

	sb.WriteString("Allowed categories: " + strings.Join(taxonomy, ", ") + ".\n")
	sb.WriteString("Infer the category from merchant or purpose cues; use \"Uncategorized\" when unsure.\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Parse EVERY transaction mentioned in the user's input\n")
	sb.WriteString("- If the user says \"100rs to papa\" - create an expense transaction with description \"Payment to papa\"\n")
	sb.WriteString("- If the user says \"2000 emi\" - create an expense transaction with description \"EMI Payment\", category \"Loan Payment\"\n")
	sb.WriteString("- If the user says \"400 for shopping\" - create an expense transaction with description \"Shopping\", category \"Shopping\"\n")
	fmt.Fprintf(&sb, "- Use today's date (%s) if the date is not specified\n", today.Format(domain.DateFormat))
	sb.WriteString("- Default payment_mode to \"upi\" if not specified\n")
	sb.WriteString("- Default type to \"expense\" if not clear\n\n")

	sb.WriteString("Return ONLY a JSON array of transaction objects, no other text, no Markdown fences. " +
		"Example: [{\"description\": \"...\", \"amount\": 100, ...}, {\"description\": \"...\", \"amount\": 2000, ...}]")

	return sb.String()
}

// extractionPrompt packs the raw input with the grounding context.
func extractionPrompt(freeText, contextBlock, categorySummary string, today time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User's input: %s\n", freeText)
	if contextBlock != "" {
		sb.WriteString("\nTransaction history context:\n")
		sb.WriteString(contextBlock)
		sb.WriteString("\n")
	}
	if categorySummary != "" {
		sb.WriteString("\nSpending by category (all time):\n")
		sb.WriteString(categorySummary)
	}
	fmt.Fprintf(&sb, "\nParse ALL transactions from the user's input and return them as a JSON array. Today's date is %s.",
		today.Format(domain.DateFormat))
	return sb.String()
}

// chatInstruction builds the assistant system message. The two branches keep
// the model from inventing history it was never given.
func chatInstruction(contextBlock string) string {
	if contextBlock == "" || contextBlock == NoDataMarker {
		return "You are a helpful AI financial assistant. You currently do not have access to the user's " +
			"transaction history. If they ask about their transactions, politely let them know you need " +
			"their transaction data."
	}

	return "You are a helpful AI financial assistant. You have FULL ACCESS to the user's transaction " +
		"history. Here is their complete transaction data:\n\n" + contextBlock + "\n\n" +
		"IMPORTANT RULES:\n" +
		"1. Keep responses SHORT and CONCISE - maximum 2-3 sentences\n" +
		"2. When asked about spending, just give the total amount and a brief breakdown\n" +
		"3. DO NOT list every single transaction - just summarize\n" +
		"4. Use actual numbers from the transaction history\n" +
		"5. DO NOT say you don't have access - you DO have access\n" +
		"6. Be direct and to the point - no long explanations"
}

// insightsPrompt renders a user's ledger and budgets into the analysis
// request used by Insights.
func insightsPrompt(txs []domain.Transaction, budgets []domain.Budget) string {
	var income, expense float64
	for _, t := range txs {
		if t.Type == domain.Income {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following financial data and provide actionable insights:\n\n")
	sb.WriteString("Transactions Summary:\n")
	fmt.Fprintf(&sb, "- Total transactions: %d\n", len(txs))
	fmt.Fprintf(&sb, "- Income: %s\n", rupees(income))
	fmt.Fprintf(&sb, "- Expenses: %s\n\n", rupees(expense))

	if top := topExpenseCategories(txs, 5); len(top) > 0 {
		sb.WriteString("Top spending categories:\n")
		for _, c := range top {
			fmt.Fprintf(&sb, "- %s: %s\n", c.name, rupees(c.amount))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Budgets:\n")
	if len(budgets) == 0 {
		sb.WriteString("No budgets set\n")
	}
	for _, b := range budgets {
		name := b.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		pct := 0.0
		if b.MonthlyLimit > 0 {
			pct = 100 * b.CurrentSpent / b.MonthlyLimit
		}
		fmt.Fprintf(&sb, "- %s: %s/%s (%.1f%%) for %d-%02d\n",
			name, rupees(b.CurrentSpent), rupees(b.MonthlyLimit), pct, b.Year, b.Month)
	}

	sb.WriteString("\nProvide:\n" +
		"1. 3 key insights about spending patterns\n" +
		"2. 2 actionable recommendations to improve savings\n" +
		"3. 1 warning if any budgets are at risk\n" +
		"4. Overall financial health assessment (1-2 sentences)\n\n" +
		"Keep it concise and actionable. Format as a JSON object with keys: " +
		"insights, recommendations, warnings, assessment.")

	return sb.String()
}

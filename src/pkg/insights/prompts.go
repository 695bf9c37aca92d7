package insights

const systemPrompt = "You are a financial analyst assistant for a company that runs ERPNext. " +
	"Answer from the data you are given, say so when the data does not cover the question, and never invent figures."

const insightsPrompt = `Analyze the following ERPNext financial data for %s and provide:

1. KEY FINANCIAL METRICS SUMMARY - Overview of profitability, liquidity, and solvency
2. TREND ANALYSIS - Important changes compared to recent periods
3. RISK ALERTS - Any concerning financial indicators or red flags
4. OPPORTUNITIES - Recommendations for improvement
5. ACTIONABLE INSIGHTS - Specific next steps for management

Financial Data:
%s

Format your response in clear sections with bullet points where appropriate. Be concise but comprehensive. Focus on insights that drive business decisions.
`

const summaryPrompt = `Create a brief executive summary (2-3 sentences) of the financial health based on this data:

%s

Be direct and focus on overall financial position.
`

const revenuePrompt = `Analyze these revenue trends and identify patterns:

%s

Provide insights on:
1. Growth rate
2. Seasonality patterns if any
3. Forecast for next period
Keep response concise.
`

const cashPrompt = `Analyze the cash flow position based on this data:

%s

Provide insights on:
1. Cash burn rate or accumulation
2. Liquidity concerns
3. Recommendations for cash management
Keep response concise and actionable.
`

const chatPrompt = `Company: %s

Financial Data:
%s

Question: %s

Answer the question using the financial data above. Keep it short; use bullet points for lists of figures.
`

const (
	FallbackSummary = "Unable to generate summary"
	FallbackTrends  = "Unable to analyze trends"
	FallbackCash    = "Unable to analyze cash position"
)

type generation struct {
	temperature     float64
	maxOutputTokens int
}

var (
	insightsGeneration = generation{temperature: 0.7, maxOutputTokens: 1000}
	summaryGeneration  = generation{temperature: 0.5, maxOutputTokens: 200}
	trendGeneration    = generation{temperature: 0.6, maxOutputTokens: 300}
	cashGeneration     = generation{temperature: 0.6, maxOutputTokens: 300}
	chatGeneration     = generation{temperature: 0.7, maxOutputTokens: 800}
)

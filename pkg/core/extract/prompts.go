package extract

// SystemPrompt fixes the extraction persona. The pairing of a short
// system instruction with a field-by-field user prompt keeps weaker
// models from drifting into prose.
const SystemPrompt = `You are an accounting specialist focused on German financial reports. Extract financial data in EUR. Only respond with JSON.`

// UserPromptHeader precedes the report text in every extraction call.
// The field list is the extraction contract; "omit if unknown" tells the
// model never to fabricate zeros.
const UserPromptHeader = `You are analyzing public financial information from a German company.
Extract and return ONLY the following key financial figures for the reporting year in a JSON format.
All amounts must be in EUR. Adjust amounts given in thousands (kEUR/tEUR) or millions accordingly.
If a metric cannot be determined, omit it from the response JSON or use null.
Net profit should be negative in case of a loss.
The profit carried forward can be negative in case of a loss carried forward.

Required fields (include only if found):
- net_profit: Net profit or net income/loss (EUR). Negative for loss.
- mitarbeiter: Average number of employees.
- umsatz: Revenue (EUR).
- gewinnvortrag: Profit/loss carried forward (EUR). Negative for loss carried forward.
- bilanzsumme_total: Total assets (or liabilities) (EUR).
- schulden: Total liabilities (debt) (EUR).
- eigenkapital: Equity (EUR).
- guv_zinsen: Interest expense or income (net) (EUR). Negative for interest expense.
- guv_steuern: Income taxes (EUR).
- guv_abschreibungen: Depreciation and amortization (EUR).
- cash: Cash and cash equivalents (EUR).
- dividende: Distribution or dividend (EUR).

Only return the JSON object, nothing else.
Example output (all found): {"net_profit": 150000, "mitarbeiter": 55, "umsatz": 2500000, "gewinnvortrag": 20000, "bilanzsumme_total": 1200000, "schulden": 700000, "eigenkapital": 500000, "guv_zinsen": -5000, "guv_steuern": 45000, "guv_abschreibungen": 80000, "cash": 100000, "dividende": 10000}
Example output (some missing): {"net_profit": -50000, "umsatz": 1800000, "gewinnvortrag": -10000, "bilanzsumme_total": 900000, "schulden": 600000, "eigenkapital": 300000, "guv_abschreibungen": 60000, "cash": 50000, "dividende": 0}

Here's the financial information:
`
